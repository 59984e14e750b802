package sunset

import (
	"context"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"smart_hub/internal/timeofday"
)

// ComputedResolver calculates sunset locally, without network access.
type ComputedResolver struct {
	loc Location
	now func() time.Time
}

func NewComputedResolver(loc Location) *ComputedResolver {
	return &ComputedResolver{loc: loc, now: time.Now}
}

func (r *ComputedResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	tz := r.loc.zone()
	today := r.now().In(tz)
	_, set := sunrise.SunriseSunset(r.loc.Latitude, r.loc.Longitude, today.Year(), today.Month(), today.Day())
	if set.IsZero() {
		// polar day or night
		return 0, unavailable("no sunset at %.4f,%.4f on %s", r.loc.Latitude, r.loc.Longitude, today.Format(time.DateOnly))
	}
	return timeofday.FromTime(set.In(tz)), nil
}

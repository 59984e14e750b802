// Package sunset resolves today's sunset time for the hub's location.
package sunset

import (
	"context"
	"fmt"
	"time"

	"smart_hub"
	"smart_hub/internal/timeofday"
)

// Resolver returns today's local sunset as a time of day.
type Resolver interface {
	Sunset(ctx context.Context) (timeofday.Clock, error)
}

// Location is the fixed place the hub is installed at.
type Location struct {
	Latitude  float64
	Longitude float64
	TZ        *time.Location
}

func (l Location) zone() *time.Location {
	if l.TZ == nil {
		return time.Local
	}
	return l.TZ
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("sunset: %s: %w", fmt.Sprintf(format, args...), smart_hub.ErrDependencyUnavailable)
}

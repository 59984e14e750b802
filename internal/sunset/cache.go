package sunset

import (
	"context"
	"sync"
	"time"

	"smart_hub/internal/timeofday"
)

type cachedDay struct {
	date  string
	value timeofday.Clock
}

// CachedResolver keeps one resolved sunset per calendar day. Failures are not
// cached.
type CachedResolver struct {
	next Resolver
	tz   *time.Location
	now  func() time.Time

	mu    sync.Mutex
	entry *cachedDay
}

func NewCachedResolver(next Resolver, tz *time.Location) *CachedResolver {
	if tz == nil {
		tz = time.Local
	}
	return &CachedResolver{next: next, tz: tz, now: time.Now}
}

func (c *CachedResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	date := c.now().In(c.tz).Format(time.DateOnly)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.entry.date == date {
		return c.entry.value, nil
	}
	v, err := c.next.Sunset(ctx)
	if err != nil {
		return 0, err
	}
	c.entry = &cachedDay{date: date, value: v}
	return v, nil
}

// FallbackResolver asks primary first and secondary when primary fails.
type FallbackResolver struct {
	primary   Resolver
	secondary Resolver
	onError   func(error)
}

// NewFallbackResolver wires two resolvers. onError, if set, sees every
// primary failure that was covered by the secondary.
func NewFallbackResolver(primary, secondary Resolver, onError func(error)) *FallbackResolver {
	return &FallbackResolver{primary: primary, secondary: secondary, onError: onError}
}

func (f *FallbackResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	v, err := f.primary.Sunset(ctx)
	if err == nil {
		return v, nil
	}
	v2, err2 := f.secondary.Sunset(ctx)
	if err2 != nil {
		return 0, err
	}
	if f.onError != nil {
		f.onError(err)
	}
	return v2, nil
}

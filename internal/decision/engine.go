// Package decision turns the latest sensor sample and the stored preference
// into fan and light on/off states.
package decision

import (
	"context"
	"fmt"

	"smart_hub/internal/models"
	"smart_hub/internal/timeofday"
)

// History answers exact-timestamp lookups over the sample log. Only the
// legacy light rule needs it.
type History interface {
	FindByTimestamp(ctx context.Context, ts string) (models.Sample, bool, error)
}

// Engine evaluates fan and light rules.
type Engine struct {
	legacy bool
}

// New returns an engine using the range rule for the light, or the legacy
// exact-match rule when legacyExactMatch is set.
func New(legacyExactMatch bool) *Engine {
	return &Engine{legacy: legacyExactMatch}
}

// Fan is on when someone is present and the room is at or above target.
func Fan(latest models.Sample, pref models.Preference) bool {
	if !latest.Presence {
		return false
	}
	return latest.Temperature >= pref.TargetTemperature
}

// Light is on when someone is present and the sample time falls inside
// [on, off), wrapping around midnight.
func Light(presence bool, now, on, off timeofday.Clock) bool {
	if !presence {
		return false
	}
	return now.Within(on, off)
}

// Decide evaluates both devices. history may be nil unless the engine runs the
// legacy rule.
func (e *Engine) Decide(ctx context.Context, latest models.Sample, pref models.Preference, history History) (models.Decision, error) {
	out := models.Decision{Fan: Fan(latest, pref)}
	if !latest.Presence {
		return out, nil
	}

	now, err := timeofday.ParseClock(latest.Timestamp)
	if err != nil {
		return models.Decision{}, fmt.Errorf("sample %d timestamp: %w", latest.ID, err)
	}
	on, err := timeofday.ParseClock(pref.LightOnTime)
	if err != nil {
		return models.Decision{}, fmt.Errorf("preference light_time_on: %w", err)
	}
	off, err := timeofday.ParseClock(pref.LightOffTime)
	if err != nil {
		return models.Decision{}, fmt.Errorf("preference light_time_off: %w", err)
	}

	if !e.legacy {
		out.Light = Light(true, now, on, off)
		return out, nil
	}

	out.Light, err = legacyLight(ctx, now, on, off, history)
	if err != nil {
		return models.Decision{}, err
	}
	return out, nil
}

// legacyLight reproduces the exact-match scheme: the light is on once a sample
// landed exactly on the on time, until one lands exactly on the off time.
func legacyLight(ctx context.Context, now, on, off timeofday.Clock, history History) (bool, error) {
	switch now {
	case on:
		return true, nil
	case off:
		return false, nil
	}
	if history == nil {
		return false, nil
	}

	_, offSeen, err := history.FindByTimestamp(ctx, off.String())
	if err != nil {
		return false, fmt.Errorf("lookup off boundary: %w", err)
	}
	if offSeen {
		return false, nil
	}
	_, onSeen, err := history.FindByTimestamp(ctx, on.String())
	if err != nil {
		return false, fmt.Errorf("lookup on boundary: %w", err)
	}
	return onSeen, nil
}

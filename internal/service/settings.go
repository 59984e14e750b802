package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart_hub"
	"smart_hub/internal/logger"
	"smart_hub/internal/models"
	"smart_hub/internal/repository"
	"smart_hub/internal/sunset"
	"smart_hub/internal/timeofday"
)

type SettingsService struct {
	settingsRepo repository.SettingsRepo
	eventRepo    repository.EventRepo
	sunset       sunset.Resolver
	log          *logger.Logger
	now          func() time.Time
}

func NewSettingsService(settingsRepo repository.SettingsRepo, eventRepo repository.EventRepo, resolver sunset.Resolver) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		eventRepo:    eventRepo,
		sunset:       resolver,
		log:          logger.Get("").Component("settings"),
		now:          time.Now,
	}
}

var errNoSunsetResolver = errors.New("no sunset resolver configured")

// Upsert computes the on/off times and writes the singleton record. Inputs are
// validated before the sunset lookup so a rejected request leaves no trace.
func (s *SettingsService) Upsert(ctx context.Context, in PreferenceInput) (models.Preference, bool, error) {
	spec := strings.TrimSpace(in.UserLight)
	useSunset := strings.EqualFold(spec, models.LightOnSunset)

	var on timeofday.Clock
	switch {
	case spec == "":
		return models.Preference{}, false, smart_hub.NewValidationError("user_light", "is required")
	case useSunset:
		spec = models.LightOnSunset
	default:
		c, err := timeofday.ParseClock(spec)
		if err != nil {
			return models.Preference{}, false, smart_hub.NewValidationError("user_light", `must be HH:MM:SS or "sunset"`)
		}
		on = c
	}

	duration, err := timeofday.ParseInterval(strings.TrimSpace(in.LightDuration))
	if err != nil {
		return models.Preference{}, false, smart_hub.NewValidationError("light_duration", timeofday.ErrInvalidInterval.Error())
	}

	if useSunset {
		if on, err = s.resolveSunset(ctx); err != nil {
			return models.Preference{}, false, err
		}
	}

	pref := models.Preference{
		TargetTemperature: in.UserTemp,
		LightOnSpec:       spec,
		LightOnTime:       on.String(),
		LightOffTime:      on.Add(duration).String(),
		UpdatedAt:         s.now().UTC(),
	}

	stored, created, err := s.settingsRepo.Upsert(ctx, pref)
	if err != nil {
		return models.Preference{}, false, fmt.Errorf("store preference: %w", err)
	}

	evType, desc := models.EventSettingsUpdated, "Preferences updated"
	if created {
		evType, desc = models.EventSettingsCreated, "Preferences created"
	}
	meta := map[string]any{
		"user_temp":      stored.TargetTemperature,
		"user_light":     stored.LightOnSpec,
		"light_time_on":  stored.LightOnTime,
		"light_time_off": stored.LightOffTime,
	}
	if in.UserID > 0 {
		meta["user_id"] = in.UserID
	}
	// the preference is committed; an audit failure only gets logged
	s.recordEvent(ctx, evType, desc, meta)
	return stored, created, nil
}

// Get returns the stored preference or ErrNotReady.
func (s *SettingsService) Get(ctx context.Context) (models.Preference, error) {
	p, found, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return models.Preference{}, fmt.Errorf("load preference: %w", err)
	}
	if !found {
		return models.Preference{}, smart_hub.NotReady("no preferences configured")
	}
	return p, nil
}

func (s *SettingsService) resolveSunset(ctx context.Context) (timeofday.Clock, error) {
	if s.sunset == nil {
		return 0, fmt.Errorf("resolve sunset: %v: %w", errNoSunsetResolver, smart_hub.ErrDependencyUnavailable)
	}
	on, err := s.sunset.Sunset(ctx)
	if err != nil {
		if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
			err = fmt.Errorf("resolve sunset: %v: %w", err, smart_hub.ErrDependencyUnavailable)
		}
		s.recordEvent(ctx, models.EventSunsetFailed, "Sunset lookup failed", map[string]any{"error": err.Error()})
		return 0, err
	}
	s.recordEvent(ctx, models.EventSunsetResolved, "Sunset resolved", map[string]any{"sunset": on.String()})
	return on, nil
}

// recordEvent appends to the activity log. Failures are logged, never returned.
func (s *SettingsService) recordEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.Append(ctx, models.Event{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Errorw("activity_event_append_failed", "type", typ, "err", err)
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smart_hub"
	"smart_hub/internal/logger"
	"smart_hub/internal/models"
	"smart_hub/internal/timeofday"
)

func newTestSettings(resolver *stubResolver) (*SettingsService, *memSettingsRepo, *fakeEventRepo) {
	repo := &memSettingsRepo{}
	events := &fakeEventRepo{}
	svc := NewSettingsService(repo, events, resolver)
	svc.now = func() time.Time { return time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC) }
	return svc, repo, events
}

func TestSettingsService_Upsert_FixedTime(t *testing.T) {
	svc, repo, events := newTestSettings(&stubResolver{})

	got, created, err := svc.Upsert(context.Background(), PreferenceInput{
		UserTemp:      25,
		UserLight:     "18:00:00",
		LightDuration: "1h30m",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("first write should report created")
	}
	if got.LightOnTime != "18:00:00" || got.LightOffTime != "19:30:00" {
		t.Fatalf("unexpected times: on=%s off=%s", got.LightOnTime, got.LightOffTime)
	}
	if got.LightOnSpec != "18:00:00" || got.TargetTemperature != 25 {
		t.Fatalf("unexpected preference: %+v", got)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected one upsert, got %d", repo.upserts)
	}
	if len(events.appended) != 1 || events.appended[0].Type != models.EventSettingsCreated {
		t.Fatalf("expected SETTINGS_CREATED event, got %+v", events.appended)
	}
}

func TestSettingsService_Upsert_SecondWriteUpdates(t *testing.T) {
	svc, _, events := newTestSettings(&stubResolver{})
	ctx := context.Background()

	if _, _, err := svc.Upsert(ctx, PreferenceInput{UserTemp: 25, UserLight: "18:00:00", LightDuration: "1h"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	got, created, err := svc.Upsert(ctx, PreferenceInput{UserTemp: 27, UserLight: "20:00:00", LightDuration: "30m"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("second write should report updated")
	}
	if got.ID != 1 || got.TargetTemperature != 27 || got.LightOffTime != "20:30:00" {
		t.Fatalf("unexpected preference: %+v", got)
	}
	if last := events.appended[len(events.appended)-1]; last.Type != models.EventSettingsUpdated {
		t.Fatalf("expected SETTINGS_UPDATED, got %s", last.Type)
	}
}

func TestSettingsService_Upsert_WrapsPastMidnight(t *testing.T) {
	svc, _, _ := newTestSettings(&stubResolver{})

	got, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "23:30:00", LightDuration: "1h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LightOffTime != "00:30:00" {
		t.Fatalf("expected 00:30:00, got %s", got.LightOffTime)
	}
}

func TestSettingsService_Upsert_Sunset(t *testing.T) {
	resolver := &stubResolver{clock: timeofday.MustParseClock("18:45:12")}
	svc, _, events := newTestSettings(resolver)

	got, _, err := svc.Upsert(context.Background(), PreferenceInput{UserTemp: 24, UserLight: "SUNSET", LightDuration: "2h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected one resolver call, got %d", resolver.calls)
	}
	if got.LightOnSpec != models.LightOnSunset {
		t.Fatalf("spec should be normalized to %q, got %q", models.LightOnSunset, got.LightOnSpec)
	}
	if got.LightOnTime != "18:45:12" || got.LightOffTime != "20:45:12" {
		t.Fatalf("unexpected times: on=%s off=%s", got.LightOnTime, got.LightOffTime)
	}
	if len(events.appended) != 2 || events.appended[0].Type != models.EventSunsetResolved {
		t.Fatalf("expected SUNSET_RESOLVED then SETTINGS_CREATED, got %+v", events.appended)
	}
}

func TestSettingsService_Upsert_SunsetFailure(t *testing.T) {
	resolver := &stubResolver{err: errors.New("connection refused")}
	svc, repo, events := newTestSettings(resolver)

	_, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "sunset", LightDuration: "1h"})
	if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if repo.found {
		t.Fatalf("nothing should be stored on sunset failure")
	}
	if len(events.appended) != 1 || events.appended[0].Type != models.EventSunsetFailed {
		t.Fatalf("expected SUNSET_FAILED event, got %+v", events.appended)
	}
}

func TestSettingsService_Upsert_NoResolver(t *testing.T) {
	svc := NewSettingsService(&memSettingsRepo{}, nil, nil)

	_, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "sunset", LightDuration: "1h"})
	if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestSettingsService_Upsert_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		in    PreferenceInput
		field string
	}{
		{name: "missing light", in: PreferenceInput{LightDuration: "1h"}, field: "user_light"},
		{name: "bad light", in: PreferenceInput{UserLight: "6pm", LightDuration: "1h"}, field: "user_light"},
		{name: "light out of range", in: PreferenceInput{UserLight: "25:00:00", LightDuration: "1h"}, field: "user_light"},
		{name: "bad duration", in: PreferenceInput{UserLight: "18:00:00", LightDuration: "90 minutes"}, field: "light_duration"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, repo, _ := newTestSettings(&stubResolver{})
			_, _, err := svc.Upsert(context.Background(), c.in)

			var verr *smart_hub.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != c.field {
				t.Fatalf("field = %q; want %q", verr.Field, c.field)
			}
			if repo.upserts != 0 {
				t.Fatalf("repo must not be written on validation error")
			}
		})
	}
}

func TestSettingsService_Upsert_EmptyDurationMeansZero(t *testing.T) {
	svc, _, _ := newTestSettings(&stubResolver{})

	got, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "18:00:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LightOnTime != got.LightOffTime {
		t.Fatalf("zero duration should give on == off, got %s/%s", got.LightOnTime, got.LightOffTime)
	}
}

func TestSettingsService_Upsert_RepoError(t *testing.T) {
	svc, repo, events := newTestSettings(&stubResolver{})
	repo.upsertErr = errors.New("disk full")

	_, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "18:00:00", LightDuration: "1h"})
	if !errors.Is(err, repo.upsertErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
	if len(events.appended) != 0 {
		t.Fatalf("no event expected on failed write")
	}
}

func TestSettingsService_Get(t *testing.T) {
	svc, repo, _ := newTestSettings(&stubResolver{})

	if _, err := svc.Get(context.Background()); !errors.Is(err, smart_hub.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	repo.pref, repo.found = models.Preference{ID: 1, TargetTemperature: 22}, true
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TargetTemperature != 22 {
		t.Fatalf("unexpected preference: %+v", got)
	}
}

func TestSettingsService_Upsert_EventFailureKeepsCommittedWrite(t *testing.T) {
	svc, repo, events := newTestSettings(&stubResolver{})
	var buf bytes.Buffer
	svc.log = logger.New(&buf, "info")
	events.appendErr = errors.New("event table locked")

	got, created, err := svc.Upsert(context.Background(), PreferenceInput{UserTemp: 23, UserLight: "18:00:00", LightDuration: "1h"})
	if err != nil {
		t.Fatalf("audit failure must not fail the write: %v", err)
	}
	if !created || got.ID != 1 || got.LightOffTime != "19:00:00" {
		t.Fatalf("unexpected result: created=%v pref=%+v", created, got)
	}
	if !repo.found {
		t.Fatalf("preference should be stored")
	}
	if !strings.Contains(buf.String(), "activity_event_append_failed") {
		t.Fatalf("expected append failure to be logged, got %q", buf.String())
	}
}

func TestSettingsService_Upsert_BadDurationSkipsSunsetLookup(t *testing.T) {
	resolver := &stubResolver{clock: timeofday.MustParseClock("18:45:12")}
	svc, repo, events := newTestSettings(resolver)

	_, _, err := svc.Upsert(context.Background(), PreferenceInput{UserLight: "sunset", LightDuration: "forever"})

	var verr *smart_hub.ValidationError
	if !errors.As(err, &verr) || verr.Field != "light_duration" {
		t.Fatalf("expected light_duration ValidationError, got %v", err)
	}
	if resolver.calls != 0 {
		t.Fatalf("sunset must not be resolved for a rejected request, got %d calls", resolver.calls)
	}
	if len(events.appended) != 0 {
		t.Fatalf("no events expected, got %+v", events.appended)
	}
	if repo.upserts != 0 {
		t.Fatalf("repo must not be written")
	}
}

func TestSettingsService_Upsert_RecordsWriter(t *testing.T) {
	svc, _, events := newTestSettings(&stubResolver{})
	ctx := context.Background()

	if _, _, err := svc.Upsert(ctx, PreferenceInput{UserLight: "18:00:00", LightDuration: "1h", UserID: 42}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Upsert(ctx, PreferenceInput{UserLight: "19:00:00", LightDuration: "1h"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.appended) != 2 {
		t.Fatalf("expected two events, got %d", len(events.appended))
	}
	if got := events.appended[0].Metadata.(map[string]any)["user_id"]; got != 42 {
		t.Fatalf("SETTINGS_CREATED user_id = %v; want 42", got)
	}
	if _, ok := events.appended[1].Metadata.(map[string]any)["user_id"]; ok {
		t.Fatalf("anonymous write should not carry user_id: %+v", events.appended[1].Metadata)
	}
}

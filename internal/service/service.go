package service

import (
	"context"
	"time"

	"smart_hub/internal/decision"
	"smart_hub/internal/models"
	"smart_hub/internal/notify"
	"smart_hub/internal/repository"
	"smart_hub/internal/sunset"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Settings manages the single preference record.
type Settings interface {
	// Upsert resolves the schedule and stores it; created reports whether the
	// record was new.
	Upsert(ctx context.Context, in PreferenceInput) (models.Preference, bool, error)
	Get(ctx context.Context) (models.Preference, error)
}

// Sensor ingests device readings.
type Sensor interface {
	Record(ctx context.Context, in SampleInput) (models.Sample, error)
	RecordFabricated(ctx context.Context, s models.Sample) (models.Sample, error)
	History(ctx context.Context, size int) ([]models.Sample, error)
}

// Decision answers fan/light queries.
type Decision interface {
	Decide(ctx context.Context) (models.Decision, error)
	// Publish evaluates the rules for a just-recorded sample and pushes the
	// result to the device.
	Publish(ctx context.Context, s models.Sample) (models.Decision, error)
}

type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
}

// Simulator feeds synthetic samples when no device is attached.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Deps are the collaborators that do not come from the repository layer.
type Deps struct {
	Sunset    sunset.Resolver
	Engine    *decision.Engine
	Publisher notify.Publisher
	TZ        *time.Location
	Auth      AuthConfig
}

type Service struct {
	Settings
	Sensor
	Decision
	EventLog
	Simulator
	Authorization
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	if deps.TZ == nil {
		deps.TZ = time.Local
	}
	if deps.Engine == nil {
		deps.Engine = decision.New(false)
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}

	sensor := NewSensorService(repos.Samples, deps.TZ)
	decider := NewDecisionService(repos.Settings, repos.Samples, deps.Engine, deps.Publisher)
	return &Service{
		Settings:      NewSettingsService(repos.Settings, repos.Events, deps.Sunset),
		Sensor:        sensor,
		Decision:      decider,
		EventLog:      NewEventLogService(repos.Events),
		Simulator:     NewDeviceSimulator(sensor, decider),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}

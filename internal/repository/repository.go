package repository

import (
	"context"
	"database/sql"
	"time"

	"smart_hub/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SettingsRepo stores the singleton preference row.
type SettingsRepo interface {
	// Upsert writes the row and reports whether it was newly created.
	Upsert(ctx context.Context, p models.Preference) (models.Preference, bool, error)
	// Load returns found=false when no preference exists yet.
	Load(ctx context.Context) (models.Preference, bool, error)
}

// SampleRepo is the append-only sensor log.
type SampleRepo interface {
	Append(ctx context.Context, s models.Sample) (models.Sample, error)
	Latest(ctx context.Context) (models.Sample, bool, error)
	FindByTimestamp(ctx context.Context, ts string) (models.Sample, bool, error)
	List(ctx context.Context, limit int) ([]models.Sample, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
}

type Repository struct {
	Settings SettingsRepo
	Samples  SampleRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Settings: NewSettingsSQLite(db),
		Samples:  NewSampleSQLite(db),
		Events:   NewEventSQLite(db),
		Auth:     NewUserRepository(db),
	}
}

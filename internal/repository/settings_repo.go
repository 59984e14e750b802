package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smart_hub/internal/models"
)

// SettingsSQLite keeps the preference in a single row (id always 1).
type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

const (
	settingsRowID = 1

	insertSettingsSQL = `
		INSERT INTO settings (id, user_temp, user_light, light_on, light_off, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	updateSettingsSQL = `
		UPDATE settings
		SET user_temp = ?, user_light = ?, light_on = ?, light_off = ?, updated_at = ?
		WHERE id = ?
	`

	selectSettingsSQL = `
		SELECT id, user_temp, user_light, light_on, light_off, updated_at
		FROM settings WHERE id = ?
	`
)

// Upsert writes the singleton row inside one transaction. created is true
// when the row did not exist before.
func (r *SettingsSQLite) Upsert(ctx context.Context, p models.Preference) (models.Preference, bool, error) {
	ts := p.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Preference{}, false, fmt.Errorf("begin settings upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertSettingsSQL,
		settingsRowID, p.TargetTemperature, p.LightOnSpec, p.LightOnTime, p.LightOffTime, ts)
	if err != nil {
		return models.Preference{}, false, fmt.Errorf("insert settings: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.Preference{}, false, fmt.Errorf("insert settings rows affected: %w", err)
	}

	created := inserted == 1
	if !created {
		if _, err := tx.ExecContext(ctx, updateSettingsSQL,
			p.TargetTemperature, p.LightOnSpec, p.LightOnTime, p.LightOffTime, ts, settingsRowID); err != nil {
			return models.Preference{}, false, fmt.Errorf("update settings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Preference{}, false, fmt.Errorf("commit settings upsert: %w", err)
	}

	p.ID = settingsRowID
	p.UpdatedAt = ts
	return p, created, nil
}

// Load fetches the singleton row.
func (r *SettingsSQLite) Load(ctx context.Context) (models.Preference, bool, error) {
	var p models.Preference
	err := r.db.QueryRowContext(ctx, selectSettingsSQL, settingsRowID).Scan(
		&p.ID,
		&p.TargetTemperature,
		&p.LightOnSpec,
		&p.LightOnTime,
		&p.LightOffTime,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Preference{}, false, nil
		}
		return models.Preference{}, false, fmt.Errorf("select settings: %w", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, true, nil
}

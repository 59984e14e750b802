package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smart_hub/internal/models"
)

// SampleSQLite is the append-only sensor log. Insertion order (id) is the
// only ordering.
type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite {
	return &SampleSQLite{db: db}
}

const (
	insertSampleSQL = `INSERT INTO sensor_samples (temperature, presence, sampled_at, recorded_at) VALUES (?, ?, ?, ?)`

	sampleColumns = `SELECT id, temperature, presence, sampled_at, recorded_at FROM sensor_samples`

	selectLatestSampleSQL = sampleColumns + ` ORDER BY id DESC LIMIT 1`
	selectSampleByTimeSQL = sampleColumns + ` WHERE sampled_at = ? ORDER BY id ASC LIMIT 1`
	selectSamplesSQL      = sampleColumns + ` ORDER BY id ASC`
	selectSamplesLimitSQL = sampleColumns + ` ORDER BY id ASC LIMIT ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (models.Sample, error) {
	var s models.Sample
	if err := row.Scan(&s.ID, &s.Temperature, &s.Presence, &s.Timestamp, &s.RecordedAt); err != nil {
		return models.Sample{}, err
	}
	s.RecordedAt = s.RecordedAt.UTC()
	return s, nil
}

// Append stores s and returns it with its assigned ID.
func (r *SampleSQLite) Append(ctx context.Context, s models.Sample) (models.Sample, error) {
	if s.RecordedAt.IsZero() {
		s.RecordedAt = time.Now()
	}
	s.RecordedAt = s.RecordedAt.UTC()

	res, err := r.db.ExecContext(ctx, insertSampleSQL, s.Temperature, s.Presence, s.Timestamp, s.RecordedAt)
	if err != nil {
		return models.Sample{}, fmt.Errorf("insert sample: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Sample{}, fmt.Errorf("get last insert id for sample: %w", err)
	}
	s.ID = id
	return s, nil
}

// Latest returns the most recently appended sample.
func (r *SampleSQLite) Latest(ctx context.Context) (models.Sample, bool, error) {
	return r.queryOne(ctx, selectLatestSampleSQL)
}

// FindByTimestamp returns the first sample stamped exactly ts.
func (r *SampleSQLite) FindByTimestamp(ctx context.Context, ts string) (models.Sample, bool, error) {
	return r.queryOne(ctx, selectSampleByTimeSQL, ts)
}

func (r *SampleSQLite) queryOne(ctx context.Context, q string, args ...any) (models.Sample, bool, error) {
	s, err := scanSample(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Sample{}, false, nil
		}
		return models.Sample{}, false, fmt.Errorf("select sample: %w", err)
	}
	return s, true, nil
}

// List returns up to limit samples in insertion order; limit <= 0 returns all.
func (r *SampleSQLite) List(ctx context.Context, limit int) ([]models.Sample, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, selectSamplesLimitSQL, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, selectSamplesSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("select samples: %w", err)
	}
	defer rows.Close()

	out := make([]models.Sample, 0, 16)
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return out, nil
}

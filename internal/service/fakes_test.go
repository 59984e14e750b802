package service

import (
	"context"
	"sync"

	"smart_hub/internal/models"
	"smart_hub/internal/timeofday"
)

// memSettingsRepo keeps the singleton preference in memory.
type memSettingsRepo struct {
	pref      models.Preference
	found     bool
	upserts   int
	upsertErr error
	loadErr   error
}

func (m *memSettingsRepo) Upsert(ctx context.Context, p models.Preference) (models.Preference, bool, error) {
	if m.upsertErr != nil {
		return models.Preference{}, false, m.upsertErr
	}
	m.upserts++
	created := !m.found
	p.ID = 1
	m.pref, m.found = p, true
	return p, created, nil
}

func (m *memSettingsRepo) Load(ctx context.Context) (models.Preference, bool, error) {
	return m.pref, m.found, m.loadErr
}

type memSampleRepo struct {
	mu      sync.Mutex
	samples []models.Sample
	err     error
	gotLim  int
}

func (m *memSampleRepo) Append(ctx context.Context, s models.Sample) (models.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Sample{}, m.err
	}
	s.ID = int64(len(m.samples) + 1)
	m.samples = append(m.samples, s)
	return s, nil
}

func (m *memSampleRepo) Latest(ctx context.Context) (models.Sample, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil || len(m.samples) == 0 {
		return models.Sample{}, false, m.err
	}
	return m.samples[len(m.samples)-1], true, nil
}

func (m *memSampleRepo) FindByTimestamp(ctx context.Context, ts string) (models.Sample, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.samples {
		if s.Timestamp == ts {
			return s, true, nil
		}
	}
	return models.Sample{}, false, m.err
}

func (m *memSampleRepo) List(ctx context.Context, limit int) ([]models.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotLim = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit <= 0 || limit > len(m.samples) {
		limit = len(m.samples)
	}
	return append([]models.Sample(nil), m.samples[:limit]...), nil
}

type stubResolver struct {
	clock timeofday.Clock
	err   error
	calls int
}

func (r *stubResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	r.calls++
	return r.clock, r.err
}

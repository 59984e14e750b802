package service

import (
	"context"
	"fmt"
	"time"

	"smart_hub"
	"smart_hub/internal/models"
	"smart_hub/internal/repository"
	"smart_hub/internal/timeofday"
)

type SensorService struct {
	sampleRepo repository.SampleRepo
	tz         *time.Location
	now        func() time.Time
}

func NewSensorService(sampleRepo repository.SampleRepo, tz *time.Location) *SensorService {
	if tz == nil {
		tz = time.Local
	}
	return &SensorService{sampleRepo: sampleRepo, tz: tz, now: time.Now}
}

// Record appends a device reading stamped with the server's receipt time.
func (s *SensorService) Record(ctx context.Context, in SampleInput) (models.Sample, error) {
	received := s.now().In(s.tz)
	stored, err := s.sampleRepo.Append(ctx, models.Sample{
		Temperature: in.Temperature,
		Presence:    in.Presence,
		Timestamp:   timeofday.FromTime(received).String(),
		RecordedAt:  received.UTC(),
	})
	if err != nil {
		return models.Sample{}, fmt.Errorf("record sample: %w", err)
	}
	return stored, nil
}

// RecordFabricated stores a test sample whose timestamp is chosen by the
// caller. An empty timestamp gets the receipt time.
func (s *SensorService) RecordFabricated(ctx context.Context, in models.Sample) (models.Sample, error) {
	received := s.now().In(s.tz)
	if in.Timestamp == "" {
		in.Timestamp = timeofday.FromTime(received).String()
	} else if _, err := timeofday.ParseClock(in.Timestamp); err != nil {
		return models.Sample{}, smart_hub.NewValidationError("timestamp", "must be HH:MM:SS")
	}
	in.ID = 0
	in.RecordedAt = received.UTC()

	stored, err := s.sampleRepo.Append(ctx, in)
	if err != nil {
		return models.Sample{}, fmt.Errorf("record fabricated sample: %w", err)
	}
	return stored, nil
}

// MaxHistorySize bounds a single history read.
const MaxHistorySize = 10_000

// History returns up to size samples in insertion order; size 0 means all.
func (s *SensorService) History(ctx context.Context, size int) ([]models.Sample, error) {
	if size < 0 {
		return nil, smart_hub.NewValidationError("size", "must not be negative")
	}
	if size > MaxHistorySize {
		return nil, smart_hub.NewValidationError("size", fmt.Sprintf("must be at most %d", MaxHistorySize))
	}
	out, err := s.sampleRepo.List(ctx, size)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	return out, nil
}

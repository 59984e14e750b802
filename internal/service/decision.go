package service

import (
	"context"
	"fmt"
	"time"

	"smart_hub"
	"smart_hub/internal/decision"
	"smart_hub/internal/models"
	"smart_hub/internal/notify"
	"smart_hub/internal/repository"
)

type DecisionService struct {
	settingsRepo repository.SettingsRepo
	sampleRepo   repository.SampleRepo
	engine       *decision.Engine
	publisher    notify.Publisher
	now          func() time.Time
}

func NewDecisionService(settingsRepo repository.SettingsRepo, sampleRepo repository.SampleRepo, engine *decision.Engine, publisher notify.Publisher) *DecisionService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &DecisionService{
		settingsRepo: settingsRepo,
		sampleRepo:   sampleRepo,
		engine:       engine,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Decide evaluates the rules against the latest sample.
func (s *DecisionService) Decide(ctx context.Context) (models.Decision, error) {
	latest, found, err := s.sampleRepo.Latest(ctx)
	if err != nil {
		return models.Decision{}, fmt.Errorf("load latest sample: %w", err)
	}
	if !found {
		return models.Decision{}, smart_hub.NotReady("no sensor data yet")
	}
	return s.decideFor(ctx, latest)
}

func (s *DecisionService) Publish(ctx context.Context, sample models.Sample) (models.Decision, error) {
	d, err := s.decideFor(ctx, sample)
	if err != nil {
		return models.Decision{}, err
	}
	if err := s.publisher.Publish(ctx, notify.Update{At: s.now().UTC(), Sample: sample, Decision: d}); err != nil {
		return d, fmt.Errorf("publish decision: %w", err)
	}
	return d, nil
}

func (s *DecisionService) decideFor(ctx context.Context, sample models.Sample) (models.Decision, error) {
	pref, found, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return models.Decision{}, fmt.Errorf("load preference: %w", err)
	}
	if !found {
		return models.Decision{}, smart_hub.NotReady("no preferences configured")
	}
	d, err := s.engine.Decide(ctx, sample, pref, s.sampleRepo)
	if err != nil {
		return models.Decision{}, fmt.Errorf("evaluate rules: %w", err)
	}
	return d, nil
}

package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"smart_hub"
	"smart_hub/internal/logger"
)

// ----------- Simulation constants -----------
const (
	AmbientC        = 28.0 // starting room temperature °C
	MinRoomC        = 18.0
	MaxRoomC        = 40.0
	MaxStepC        = 0.5 // largest temperature change per tick
	PresenceFlipPct = 0.2 // chance that presence toggles on a tick
)

// DeviceSimulator stands in for the microcontroller: every tick it records a
// reading and publishes the resulting decision.
type DeviceSimulator struct {
	sensor  Sensor
	decider Decision
	rnd     *rand.Rand
	log     *logger.Logger

	last SampleInput
}

func NewDeviceSimulator(sensor Sensor, decider Decision) *DeviceSimulator {
	return &DeviceSimulator{
		sensor:  sensor,
		decider: decider,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logger.Get("").Component("simulator"),
		last:    SampleInput{Temperature: AmbientC},
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *DeviceSimulator) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *DeviceSimulator) tick(ctx context.Context) {
	next := s.step(s.last)
	sample, err := s.sensor.Record(ctx, next)
	if err != nil {
		s.log.Errorw("record simulated sample", "error", err)
		return
	}
	s.last = next

	d, err := s.decider.Publish(ctx, sample)
	switch {
	case errors.Is(err, smart_hub.ErrNotReady):
		// nothing to decide until preferences exist
	case err != nil:
		s.log.Warnw("publish simulated decision", "sample_id", sample.ID, "error", err)
	default:
		s.log.Debugw("simulated tick", "temperature", sample.Temperature, "presence", sample.Presence, "fan", d.Fan, "light", d.Light)
	}
}

// step performs one random-walk move from prev.
func (s *DeviceSimulator) step(prev SampleInput) SampleInput {
	delta := (s.rnd.Float64()*2 - 1) * MaxStepC
	next := SampleInput{
		Temperature: clampFloat(prev.Temperature+delta, MinRoomC, MaxRoomC),
		Presence:    prev.Presence,
	}
	if s.rnd.Float64() < PresenceFlipPct {
		next.Presence = !prev.Presence
	}
	return next
}

// helpers
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

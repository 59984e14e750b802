package notify

import (
	"context"
	"sync"
)

// FakePublisher records updates for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	Updates  []Update
	Payloads [][]byte

	// PublishError, if set, is returned by Publish.
	PublishError error
	Closed       bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(ctx context.Context, u Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(u)
	if err != nil {
		return err
	}
	f.Updates = append(f.Updates, u)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Package entryservice coordinates validation, storage and change
// notification for blood-pressure entries. REST handlers, MCP tools and the
// interactive console all go through it.
package entryservice

import (
	"context"

	"github.com/starford/bptracker/internal/reading"
	"github.com/starford/bptracker/internal/storage"
)

// Change kinds passed to hooks.
const (
	KindCreated = "created"
	KindDeleted = "deleted"
)

// EventHook is called after a successful create or delete.
type EventHook func(ctx context.Context, kind string, r reading.Reading)

// Service coordinates storage operations for entries.
type Service struct {
	store storage.Provider
	hooks []EventHook
}

// NewService creates a new entry service.
func NewService(store storage.Provider, hooks ...EventHook) *Service {
	return &Service{store: store, hooks: hooks}
}

// List returns every stored entry in storage order.
func (s *Service) List(ctx context.Context) ([]reading.Reading, error) {
	return s.store.List(ctx)
}

// Get returns a single entry or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (reading.Reading, error) {
	return s.store.Get(ctx, id)
}

// Create validates in under the given default policy and stores the result.
// Validation failures are returned as *reading.ValidationError.
func (s *Service) Create(ctx context.Context, in reading.Input, d reading.Defaults) (reading.Reading, error) {
	r, err := reading.Validate(in, d)
	if err != nil {
		return reading.Reading{}, err
	}
	created, err := s.store.Create(ctx, r)
	if err != nil {
		return reading.Reading{}, err
	}
	s.emit(ctx, KindCreated, created)
	return created, nil
}

// Delete removes an entry and returns apperr.ErrNotFound if it does not exist.
// Hooks receive the reading that was actually removed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	r, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.emit(ctx, KindDeleted, r)
	return nil
}

// Stats summarizes every stored entry. ok is false when there is no data.
func (s *Service) Stats(ctx context.Context) (summary reading.Summary, ok bool, err error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return reading.Summary{}, false, err
	}
	summary, ok = reading.Summarize(all)
	return summary, ok, nil
}

func (s *Service) emit(ctx context.Context, kind string, r reading.Reading) {
	for _, h := range s.hooks {
		h(ctx, kind, r)
	}
}

package mock

import (
	"context"
	"sync"

	"spring-boot-operator/internal/unit"
)

// StatusSink is a unit.Sink keeping every status it receives.
type StatusSink struct {
	mu      sync.Mutex
	history []unit.Status
	err     error
}

var _ unit.Sink = (*StatusSink)(nil)

// NewStatusSink creates an empty sink.
func NewStatusSink() *StatusSink {
	return &StatusSink{}
}

// Fail makes SetStatus record the status and return err.
func (s *StatusSink) Fail(err error) *StatusSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *StatusSink) SetStatus(ctx context.Context, status unit.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, status)
	return s.err
}

// History returns every status received, oldest first.
func (s *StatusSink) History() []unit.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]unit.Status(nil), s.history...)
}

// Last returns the most recent status.
func (s *StatusSink) Last() unit.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return unit.Status{}
	}
	return s.history[len(s.history)-1]
}

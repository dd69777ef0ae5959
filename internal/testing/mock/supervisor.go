package mock

import (
	"context"
	"fmt"
	"sync"

	"spring-boot-operator/internal/pebble"
)

// AddedLayer records one AddLayer call.
type AddedLayer struct {
	Label   string
	Layer   pebble.Layer
	Combine bool
}

// Supervisor records the layers applied to it.
type Supervisor struct {
	mu        sync.Mutex
	layers    []AddedLayer
	replans   int
	addErr    error
	replanErr error
}

// NewSupervisor creates a supervisor that accepts every call.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// FailAddLayer makes AddLayer return err.
func (s *Supervisor) FailAddLayer(err error) *Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addErr = err
	return s
}

// FailReplan makes Replan return err.
func (s *Supervisor) FailReplan(err error) *Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replanErr = err
	return s
}

func (s *Supervisor) AddLayer(ctx context.Context, label string, layer pebble.Layer, combine bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	s.layers = append(s.layers, AddedLayer{Label: label, Layer: layer, Combine: combine})
	return nil
}

func (s *Supervisor) Replan(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replanErr != nil {
		return "", s.replanErr
	}
	s.replans++
	return fmt.Sprintf("%d", s.replans), nil
}

// Layers returns the layers added so far.
func (s *Supervisor) Layers() []AddedLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AddedLayer(nil), s.layers...)
}

// LastLayer returns the most recently added layer.
func (s *Supervisor) LastLayer() (AddedLayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.layers) == 0 {
		return AddedLayer{}, false
	}
	return s.layers[len(s.layers)-1], true
}

// Replans returns the number of successful replans.
func (s *Supervisor) Replans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replans
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spring-boot-operator/internal/reconciler"
)

type scriptedPinger struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (p *scriptedPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i >= len(p.results) {
		return p.results[len(p.results)-1]
	}
	return p.results[i]
}

type recordingTriggerer struct {
	mu    sync.Mutex
	kinds []reconciler.EventKind
}

func (r *recordingTriggerer) Trigger(kind reconciler.EventKind, relation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recordingTriggerer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.kinds)
}

func TestWatchSupervisor_TriggersOnReachable(t *testing.T) {
	down := errors.New("connection refused")
	pinger := &scriptedPinger{results: []error{down, down, nil, nil, down, nil}}
	manager := &recordingTriggerer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watchSupervisor(ctx, pinger, manager, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return manager.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	manager.mu.Lock()
	defer manager.mu.Unlock()
	for _, kind := range manager.kinds {
		assert.Equal(t, reconciler.EventWorkloadReady, kind)
	}
}

func TestWatchSupervisor_AlreadyReachable(t *testing.T) {
	pinger := &scriptedPinger{results: []error{nil}}
	manager := &recordingTriggerer{}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	watchSupervisor(ctx, pinger, manager, 5*time.Millisecond)

	assert.Equal(t, 0, manager.count())
}

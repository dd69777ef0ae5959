package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spring-boot-operator/pkg/logging"
)

const managerSubsystem = "ReconcileManager"

// Manager coordinates event handling.
//
// It manages:
//   - Change detectors (config directory, Kubernetes objects)
//   - The dispatcher that routes events to handlers
//   - The work queue and its single worker
//   - Re-delivery of deferred events with exponential backoff
//
// Exactly one event is handled at a time. Passes never overlap, so the unit
// status has a single writer at any moment.
type Manager struct {
	mu sync.RWMutex

	config ManagerConfig

	// detectors observe triggers
	detectors []ChangeDetector

	// dispatcher routes events to handlers
	dispatcher Dispatcher

	// queue is the work queue for events
	queue *delayedQueue

	// statusTracker tracks handling status for each trigger
	statusTracker map[string]*TriggerStatus

	// metrics counts outcomes per trigger
	metrics *ReconcilerMetrics

	// eventChan receives events from detectors
	eventChan chan Event

	// ctx is the manager's context
	ctx context.Context

	// cancelFunc cancels the manager's context
	cancelFunc context.CancelFunc

	// wg tracks running goroutines
	wg sync.WaitGroup

	// running indicates if the manager is active
	running bool
}

// NewManager creates a manager routing events to dispatcher.
func NewManager(config ManagerConfig, dispatcher Dispatcher, detectors ...ChangeDetector) *Manager {
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 5 * time.Minute
	}
	if config.ReconcileTimeout == 0 {
		config.ReconcileTimeout = 2 * time.Minute
	}

	return &Manager{
		config:        config,
		detectors:     detectors,
		dispatcher:    dispatcher,
		queue:         NewDelayedQueue(),
		statusTracker: make(map[string]*TriggerStatus),
		metrics:       NewReconcilerMetrics(),
		eventChan:     make(chan Event, 100),
	}
}

// Start starts the detectors and the worker.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.ctx, m.cancelFunc = context.WithCancel(ctx)
	m.running = true
	m.mu.Unlock()

	for _, detector := range m.detectors {
		if err := detector.Start(m.ctx, m.eventChan); err != nil {
			m.stopDetectors()
			m.cancelFunc()
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return fmt.Errorf("failed to start %s detector: %w", detector.GetSource(), err)
		}
	}

	m.wg.Add(2)
	go m.processEvents()
	go m.worker()

	logging.Info(managerSubsystem, "Started with %d detector(s)", len(m.detectors))
	return nil
}

// processEvents moves detected events onto the queue.
func (m *Manager) processEvents() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.eventChan:
			if !ok {
				return
			}
			m.Enqueue(event)
		}
	}
}

// Enqueue queues event for handling.
func (m *Manager) Enqueue(event Event) {
	logging.Debug(managerSubsystem, "Queued %s from %s", event, event.Source)
	m.updateStatus(event, StatePending, "")
	m.queue.Add(event)
}

// Trigger queues a fresh manual event.
func (m *Manager) Trigger(kind EventKind, relation string) {
	m.Enqueue(NewEvent(kind, relation, SourceManual))
}

// worker handles events one at a time.
func (m *Manager) worker() {
	defer m.wg.Done()

	logging.Debug(managerSubsystem, "Worker started")
	for {
		event, ok := m.queue.Get(m.ctx)
		if !ok {
			logging.Debug(managerSubsystem, "Worker shutting down")
			return
		}

		m.processEvent(event)
		m.queue.Done(event)
	}
}

// processEvent dispatches a single event and decides about re-delivery.
func (m *Manager) processEvent(event Event) {
	m.updateStatus(event, StateReconciling, "")

	ctx, cancel := context.WithTimeout(m.ctx, m.config.ReconcileTimeout)
	defer cancel()

	start := time.Now()
	outcome := m.dispatcher.Dispatch(ctx, event)
	if ctx.Err() == context.DeadlineExceeded && outcome.IsSuccess() {
		outcome = Waiting(fmt.Sprintf("reconciliation timed out after %v", m.config.ReconcileTimeout), true)
	}
	m.metrics.RecordOutcome(event.Name(), outcome, time.Since(start))

	switch {
	case outcome.IsSuccess():
		logging.Debug(managerSubsystem, "Handled %s", event)
		m.updateStatus(event, StateSynced, outcome.String())
	case outcome.Retry:
		m.deferEvent(event, outcome)
	default:
		m.updateStatus(event, StateBlocked, outcome.String())
	}
}

// deferEvent schedules the same event for another delivery.
func (m *Manager) deferEvent(event Event, outcome Outcome) {
	if m.config.MaxRetries > 0 && event.Attempt > m.config.MaxRetries {
		logging.Error(managerSubsystem, nil, "Giving up on %s after %d deliveries: %s", event.Name(), event.Attempt, outcome)
		m.updateStatus(event, StateFailed, outcome.String())
		return
	}

	backoff := m.calculateBackoff(event.Attempt)
	m.updateStatus(event, StateDeferred, outcome.String())

	event.Attempt++
	m.queue.AddAfter(event, backoff)

	logging.Info(managerSubsystem, "Deferred %s for %v: %s", event.Name(), backoff, outcome.Reason)
}

// calculateBackoff computes exponential backoff.
func (m *Manager) calculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 32 {
		return m.config.MaxBackoff
	}

	// Exponential backoff: initial * 2^(attempt-1)
	backoff := m.config.InitialBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > m.config.MaxBackoff || backoff <= 0 {
		backoff = m.config.MaxBackoff
	}
	return backoff
}

// updateStatus updates the tracked state of the event's trigger.
func (m *Manager) updateStatus(event Event, state TriggerState, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := eventKey(event)
	status, ok := m.statusTracker[key]
	if !ok {
		status = &TriggerStatus{Trigger: key}
		m.statusTracker[key] = status
	}

	status.State = state
	status.LastEventID = event.ID
	if outcome != "" {
		status.LastOutcome = outcome
	}

	switch state {
	case StateSynced, StateBlocked:
		now := time.Now()
		status.LastReconcileTime = &now
		status.RetryCount = 0
	case StateDeferred:
		status.RetryCount++
	}
}

func (m *Manager) stopDetectors() {
	for _, detector := range m.detectors {
		if err := detector.Stop(); err != nil {
			logging.Error(managerSubsystem, err, "Error stopping %s detector", detector.GetSource())
		}
	}
}

// Stop gracefully shuts down the manager. A pass in progress is allowed to
// finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	logging.Info(managerSubsystem, "Stopping reconciliation manager...")

	m.stopDetectors()
	m.queue.Shutdown()
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.wg.Wait()
	m.metrics.LogSummary()

	logging.Info(managerSubsystem, "Reconciliation manager stopped")
	return nil
}

// GetStatus returns the handling status of a trigger by event name.
func (m *Manager) GetStatus(trigger string) (TriggerStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statusTracker[trigger]
	if !ok {
		return TriggerStatus{}, false
	}
	return *status, true
}

// GetAllStatuses returns the status of every trigger seen so far.
func (m *Manager) GetAllStatuses() []TriggerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]TriggerStatus, 0, len(m.statusTracker))
	for _, status := range m.statusTracker {
		statuses = append(statuses, *status)
	}
	return statuses
}

// Metrics returns the outcome counters.
func (m *Manager) Metrics() *ReconcilerMetrics {
	return m.metrics
}

// IsRunning returns whether the manager is running.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetQueueLength returns the number of queued and deferred events.
func (m *Manager) GetQueueLength() int {
	return m.queue.Len() + m.queue.Deferred()
}

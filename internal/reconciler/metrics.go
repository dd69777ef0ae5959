package reconciler

import (
	"sort"
	"sync"
	"time"

	"spring-boot-operator/pkg/logging"
)

// ReconcilerMetrics tracks handling outcomes per trigger.
//
// The counters are kept in memory and summarised in the log when the manager
// stops, and by the reconcile command after a single pass.
type ReconcilerMetrics struct {
	mu sync.RWMutex

	// Per-trigger metrics
	triggerMetrics map[string]*triggerMetrics

	// Global counters for summary metrics
	totalAttempts  int64
	totalSuccesses int64
	totalBlocked   int64
	totalWaiting   int64
	totalDeferred  int64
}

// triggerMetrics holds handling metrics for a single event name.
type triggerMetrics struct {
	Trigger       string
	Attempts      int64
	Successes     int64
	Blocked       int64
	Waiting       int64
	Deferred      int64
	TotalDuration time.Duration
	LastOutcome   string
	LastHandledAt time.Time
	LastSuccessAt time.Time
}

// NewReconcilerMetrics creates a new ReconcilerMetrics instance.
func NewReconcilerMetrics() *ReconcilerMetrics {
	return &ReconcilerMetrics{
		triggerMetrics: make(map[string]*triggerMetrics),
	}
}

func (m *ReconcilerMetrics) getOrCreateTriggerMetrics(trigger string) *triggerMetrics {
	if metrics, exists := m.triggerMetrics[trigger]; exists {
		return metrics
	}

	metrics := &triggerMetrics{Trigger: trigger}
	m.triggerMetrics[trigger] = metrics
	return metrics
}

// RecordOutcome records the outcome of one delivery of trigger.
func (m *ReconcilerMetrics) RecordOutcome(trigger string, outcome Outcome, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	metrics := m.getOrCreateTriggerMetrics(trigger)
	metrics.Attempts++
	metrics.TotalDuration += duration
	metrics.LastOutcome = outcome.String()
	metrics.LastHandledAt = now
	m.totalAttempts++

	switch outcome.Kind {
	case OutcomeSuccess:
		metrics.Successes++
		metrics.LastSuccessAt = now
		m.totalSuccesses++
	case OutcomeBlocked:
		metrics.Blocked++
		m.totalBlocked++
	case OutcomeWaiting:
		metrics.Waiting++
		m.totalWaiting++
	}
	if outcome.Retry {
		metrics.Deferred++
		m.totalDeferred++
	}

	logging.Debug("ReconcilerMetrics", "%s finished with %s in %v (attempts: %d)",
		trigger, outcome, duration, metrics.Attempts)
}

// ReconcilerMetricsSummary provides a summary of handling metrics.
type ReconcilerMetricsSummary struct {
	TotalAttempts     int64               `json:"total_attempts"`
	TotalSuccesses    int64               `json:"total_successes"`
	TotalBlocked      int64               `json:"total_blocked"`
	TotalWaiting      int64               `json:"total_waiting"`
	TotalDeferred     int64               `json:"total_deferred"`
	PerTriggerMetrics []TriggerMetricView `json:"per_trigger_metrics"`
	SuccessRate       float64             `json:"success_rate"`
}

// TriggerMetricView is a read-only view of the metrics of one trigger.
type TriggerMetricView struct {
	Trigger         string        `json:"trigger"`
	Attempts        int64         `json:"attempts"`
	Successes       int64         `json:"successes"`
	Blocked         int64         `json:"blocked"`
	Waiting         int64         `json:"waiting"`
	Deferred        int64         `json:"deferred"`
	AverageDuration time.Duration `json:"average_duration"`
	LastOutcome     string        `json:"last_outcome"`
	LastHandledAt   time.Time     `json:"last_handled_at,omitempty"`
	LastSuccessAt   time.Time     `json:"last_success_at,omitempty"`
}

// GetSummary returns a snapshot of all metrics, sorted by trigger name.
func (m *ReconcilerMetrics) GetSummary() ReconcilerMetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := ReconcilerMetricsSummary{
		TotalAttempts:     m.totalAttempts,
		TotalSuccesses:    m.totalSuccesses,
		TotalBlocked:      m.totalBlocked,
		TotalWaiting:      m.totalWaiting,
		TotalDeferred:     m.totalDeferred,
		PerTriggerMetrics: make([]TriggerMetricView, 0, len(m.triggerMetrics)),
	}

	for _, metrics := range m.triggerMetrics {
		view := TriggerMetricView{
			Trigger:       metrics.Trigger,
			Attempts:      metrics.Attempts,
			Successes:     metrics.Successes,
			Blocked:       metrics.Blocked,
			Waiting:       metrics.Waiting,
			Deferred:      metrics.Deferred,
			LastOutcome:   metrics.LastOutcome,
			LastHandledAt: metrics.LastHandledAt,
			LastSuccessAt: metrics.LastSuccessAt,
		}
		if metrics.Attempts > 0 {
			view.AverageDuration = metrics.TotalDuration / time.Duration(metrics.Attempts)
		}
		summary.PerTriggerMetrics = append(summary.PerTriggerMetrics, view)
	}
	sort.Slice(summary.PerTriggerMetrics, func(i, j int) bool {
		return summary.PerTriggerMetrics[i].Trigger < summary.PerTriggerMetrics[j].Trigger
	})

	if m.totalAttempts > 0 {
		summary.SuccessRate = float64(m.totalSuccesses) / float64(m.totalAttempts)
	}

	return summary
}

// LogSummary writes the summary at info level.
func (m *ReconcilerMetrics) LogSummary() {
	summary := m.GetSummary()
	if summary.TotalAttempts == 0 {
		return
	}

	logging.Info("ReconcilerMetrics", "Handled %d deliveries: %d succeeded, %d blocked, %d waiting, %d deferred",
		summary.TotalAttempts, summary.TotalSuccesses, summary.TotalBlocked, summary.TotalWaiting, summary.TotalDeferred)
	for _, view := range summary.PerTriggerMetrics {
		logging.Debug("ReconcilerMetrics", "%s: %d attempt(s), last %s", view.Trigger, view.Attempts, view.LastOutcome)
	}
}

// Reset clears all metrics.
func (m *ReconcilerMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.triggerMetrics = make(map[string]*triggerMetrics)
	m.totalAttempts = 0
	m.totalSuccesses = 0
	m.totalBlocked = 0
	m.totalWaiting = 0
	m.totalDeferred = 0
}

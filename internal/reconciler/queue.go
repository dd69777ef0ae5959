package reconciler

import (
	"context"
	"sync"
	"time"
)

// eventKey is the deduplication key of an event. Two deliveries of the same
// trigger coalesce into one pass.
func eventKey(event Event) string {
	return event.Name()
}

// workQueue implements ReconcileQueue. It keeps one pending delivery per
// trigger, in first-seen order, and never hands out a trigger that is still
// being handled; a delivery arriving meanwhile is held until Done.
type workQueue struct {
	mu sync.Mutex

	order   []string
	pending map[string]Event
	active  map[string]bool
	held    map[string]Event

	shuttingDown bool

	// wake has room for one signal; Get drains it before rechecking order.
	wake      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a new reconciliation queue.
func NewQueue() ReconcileQueue {
	return newWorkQueue()
}

func newWorkQueue() *workQueue {
	return &workQueue{
		pending: make(map[string]Event),
		active:  make(map[string]bool),
		held:    make(map[string]Event),
		wake:    make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

func (q *workQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// enqueue stores event as the pending delivery of its trigger. Callers hold mu.
func (q *workQueue) enqueue(key string, event Event) {
	if _, queued := q.pending[key]; !queued {
		q.order = append(q.order, key)
	}
	q.pending[key] = event
}

// Add queues event, replacing a pending delivery of the same trigger.
func (q *workQueue) Add(event Event) {
	key := eventKey(event)

	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		return
	}
	if q.active[key] {
		q.held[key] = event
		q.mu.Unlock()
		return
	}
	q.enqueue(key, event)
	q.mu.Unlock()

	q.signal()
}

// Get returns the oldest pending trigger. It blocks until one is available,
// ctx is done, or the queue is shut down and drained.
func (q *workQueue) Get(ctx context.Context) (Event, bool) {
	for {
		q.mu.Lock()
		if len(q.order) > 0 {
			key := q.order[0]
			q.order = q.order[1:]
			event := q.pending[key]
			delete(q.pending, key)
			q.active[key] = true
			more := len(q.order) > 0
			q.mu.Unlock()

			if more {
				q.signal()
			}
			return event, true
		}
		shuttingDown := q.shuttingDown
		q.mu.Unlock()

		if shuttingDown {
			return Event{}, false
		}

		select {
		case <-ctx.Done():
			return Event{}, false
		case <-q.closed:
		case <-q.wake:
		}
	}
}

// Done releases the trigger of event and queues a delivery held meanwhile.
func (q *workQueue) Done(event Event) {
	key := eventKey(event)

	q.mu.Lock()
	delete(q.active, key)
	held, ok := q.held[key]
	if ok {
		delete(q.held, key)
		q.enqueue(key, held)
	}
	q.mu.Unlock()

	if ok {
		q.signal()
	}
}

// Len returns the number of pending triggers.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Shutdown stops accepting events and wakes blocked callers of Get.
func (q *workQueue) Shutdown() {
	q.mu.Lock()
	q.shuttingDown = true
	q.mu.Unlock()

	q.closeOnce.Do(func() { close(q.closed) })
}

// delayedQueue adds deferred delivery to a ReconcileQueue. At most one
// deferred delivery per trigger is pending.
type delayedQueue struct {
	ReconcileQueue

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDelayedQueue creates a queue that supports delayed requeuing.
func NewDelayedQueue() *delayedQueue {
	return &delayedQueue{
		ReconcileQueue: NewQueue(),
		timers:         make(map[string]*time.Timer),
	}
}

// cancel stops the deferred delivery of key. Callers hold mu.
func (d *delayedQueue) cancel(key string) {
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Add queues event now. A deferred delivery of the same trigger is dropped;
// the new delivery supersedes it.
func (d *delayedQueue) Add(event Event) {
	d.mu.Lock()
	d.cancel(eventKey(event))
	d.mu.Unlock()

	d.ReconcileQueue.Add(event)
}

// AddAfter queues event once delay has passed, replacing an earlier
// deferred delivery of the same trigger.
func (d *delayedQueue) AddAfter(event Event, delay time.Duration) {
	key := eventKey(event)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancel(key)

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		current := d.timers[key] == timer && !d.stopped
		if current {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		if current {
			d.ReconcileQueue.Add(event)
		}
	})
	d.timers[key] = timer
}

// Deferred returns the number of events waiting for their delay to expire.
func (d *delayedQueue) Deferred() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Shutdown cancels deferred deliveries and shuts the queue down.
func (d *delayedQueue) Shutdown() {
	d.mu.Lock()
	d.stopped = true
	for key := range d.timers {
		d.cancel(key)
	}
	d.mu.Unlock()

	d.ReconcileQueue.Shutdown()
}

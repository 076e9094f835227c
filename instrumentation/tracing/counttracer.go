package tracing

import "sync"

// CountTracer counts tasks by policy and outcome.
type CountTracer struct {
	lock     sync.Mutex
	placed   map[string]uint64
	failed   map[string]uint64
	released uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		placed: make(map[string]uint64),
		failed: make(map[string]uint64),
	}
}

// Trace counts the task.
func (t *CountTracer) Trace(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch {
	case task.Kind == KindRelease:
		t.released++
	case task.Placed:
		t.placed[task.Policy]++
	default:
		t.failed[task.Policy]++
	}
}

// Placed returns the number of successful allocations made with a policy.
func (t *CountTracer) Placed(policy string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.placed[policy]
}

// Failed returns the number of failed allocations made with a policy.
func (t *CountTracer) Failed(policy string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.failed[policy]
}

// Released returns the number of release operations.
func (t *CountTracer) Released() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.released
}

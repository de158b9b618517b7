// Package queue implements the BRPL queue meter (C1): a process-wide,
// bounded counter over the node's outbound forwarding queue. It is the
// thinnest component in the core and the one the rest of the objective
// leans on for congestion pressure (rho, in internal/dagstate).
package queue

import "sync/atomic"

// Meter tracks current occupancy and lifetime enqueue/drop counters for a
// single forwarding queue. Grounded on brpl-queue.c/brpl-queue.h.
//
// Zero value is not ready for use; call Init.
//
// Mutation methods are safe to call from an interrupt-safe context
// concurrently with length reads (spec.md §5): all fields are plain
// machine words updated with atomic operations rather than under a mutex,
// since the critical sections are single instructions.
type Meter struct {
	length        atomic.Uint32 // current occupancy; logically 16-bit
	capacity      atomic.Uint32 // configured bound; 0 means uncapped
	enqueuedTotal atomic.Uint32
	droppedTotal  atomic.Uint32
}

// NewMeter returns a Meter with capacity 0 (uncapped); call Init before use
// to set a real capacity.
func NewMeter() *Meter {
	return &Meter{}
}

// Init resets the meter and sets its capacity. capacity == 0 means
// "uncapped growth of the counter, but never decrement below zero" per
// spec.md §4.1; onWarn, if non-nil, is invoked once to surface that this is
// an ambiguous, possibly-unintended configuration (spec.md §9 open
// question) — internal/simulate wires this to its zerolog logger.
func (m *Meter) Init(capacity uint16, onWarn func()) {
	m.length.Store(0)
	m.capacity.Store(uint32(capacity))
	m.enqueuedTotal.Store(0)
	m.droppedTotal.Store(0)
	if capacity == 0 && onWarn != nil {
		onWarn()
	}
}

// OnEnqueue increments length if under the configured cap (or unconditionally
// if uncapped), and always increments the lifetime enqueued counter.
func (m *Meter) OnEnqueue() {
	cap := m.capacity.Load()
	if cap == 0 {
		m.length.Add(1)
	} else {
		for {
			cur := m.length.Load()
			if cur >= cap {
				break
			}
			if m.length.CompareAndSwap(cur, cur+1) {
				break
			}
		}
	}
	m.enqueuedTotal.Add(1)
}

// OnDequeue decrements length if positive.
func (m *Meter) OnDequeue() {
	for {
		cur := m.length.Load()
		if cur == 0 {
			return
		}
		if m.length.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// OnDrop increments the lifetime dropped counter only; it does not touch
// length (a drop means the item never entered the queue).
func (m *Meter) OnDrop() {
	m.droppedTotal.Add(1)
}

func (m *Meter) Length() uint16        { return uint16(m.length.Load()) }
func (m *Meter) Capacity() uint16      { return uint16(m.capacity.Load()) }
func (m *Meter) EnqueuedTotal() uint32 { return m.enqueuedTotal.Load() }
func (m *Meter) DroppedTotal() uint32  { return m.droppedTotal.Load() }

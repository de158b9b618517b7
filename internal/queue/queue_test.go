package queue

import "testing"

func TestMeterEnqueueDequeueUncapped(t *testing.T) {
	m := NewMeter()
	m.Init(0, nil)

	const enqueues, dequeues = 10, 4
	for i := 0; i < enqueues; i++ {
		m.OnEnqueue()
	}
	for i := 0; i < dequeues; i++ {
		m.OnDequeue()
	}

	if got, want := m.Length(), uint16(enqueues-dequeues); got != want {
		t.Fatalf("Length() = %d, want %d", got, want)
	}
	if got, want := m.EnqueuedTotal(), uint32(enqueues); got != want {
		t.Fatalf("EnqueuedTotal() = %d, want %d", got, want)
	}
	if got := m.DroppedTotal(); got != 0 {
		t.Fatalf("DroppedTotal() = %d, want 0", got)
	}
}

func TestMeterRespectsCapacity(t *testing.T) {
	m := NewMeter()
	m.Init(3, nil)

	for i := 0; i < 10; i++ {
		m.OnEnqueue()
	}

	if got, want := m.Length(), uint16(3); got != want {
		t.Fatalf("Length() = %d, want %d (capped)", got, want)
	}
	if got, want := m.EnqueuedTotal(), uint32(10); got != want {
		t.Fatalf("EnqueuedTotal() = %d, want %d (still counts every call)", got, want)
	}
}

func TestMeterDequeueNeverGoesNegative(t *testing.T) {
	m := NewMeter()
	m.Init(5, nil)

	m.OnDequeue()
	m.OnDequeue()

	if got := m.Length(); got != 0 {
		t.Fatalf("Length() = %d, want 0", got)
	}
}

func TestMeterOnDropOnlyTouchesDroppedTotal(t *testing.T) {
	m := NewMeter()
	m.Init(5, nil)

	m.OnEnqueue()
	m.OnDrop()
	m.OnDrop()

	if got, want := m.Length(), uint16(1); got != want {
		t.Fatalf("Length() = %d, want %d", got, want)
	}
	if got, want := m.DroppedTotal(), uint32(2); got != want {
		t.Fatalf("DroppedTotal() = %d, want %d", got, want)
	}
}

func TestMeterZeroCapacityWarns(t *testing.T) {
	m := NewMeter()
	warned := false
	m.Init(0, func() { warned = true })

	if !warned {
		t.Fatal("Init(0, ...) did not invoke the warn callback")
	}
	m.OnEnqueue()
	if got := m.Length(); got != 1 {
		t.Fatalf("Length() = %d, want 1 (uncapped mode still counts)", got)
	}
}

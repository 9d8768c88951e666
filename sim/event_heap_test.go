package sim

import (
	"testing"
)

// TestEventHeap_TimeOrdering tests that events are popped in time order
func TestEventHeap_TimeOrdering(t *testing.T) {
	h := NewEventHeap()

	h.Schedule(&event{time: 1.0, seq: 1})
	h.Schedule(&event{time: 0.5, seq: 2})
	h.Schedule(&event{time: 1.5, seq: 3})

	want := []float64{0.5, 1.0, 1.5}
	for i, w := range want {
		got := h.PopNext()
		if got.time != w {
			t.Errorf("pop %d: time = %v, want %v", i, got.time, w)
		}
	}
	if h.Len() != 0 {
		t.Errorf("Heap should be empty, len = %d", h.Len())
	}
}

// TestEventHeap_SequenceTieBreak tests that same-time events keep insertion order
func TestEventHeap_SequenceTieBreak(t *testing.T) {
	h := NewEventHeap()
	for seq := uint64(10); seq >= 1; seq-- {
		h.Schedule(&event{time: 2.0, seq: seq})
	}
	for want := uint64(1); want <= 10; want++ {
		got := h.PopNext()
		if got.seq != want {
			t.Fatalf("seq = %d, want %d", got.seq, want)
		}
	}
}

func TestEventHeap_EmptyPeekAndPop(t *testing.T) {
	h := NewEventHeap()
	if h.Peek() != nil {
		t.Error("Peek on empty heap should return nil")
	}
	if h.PopNext() != nil {
		t.Error("PopNext on empty heap should return nil")
	}
	h.Schedule(&event{time: 3, seq: 1})
	if h.Peek().time != 3 || h.Len() != 1 {
		t.Error("Peek must not remove the event")
	}
}

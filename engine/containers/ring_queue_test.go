package containers

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/teapots/engine/core"
)

func TestRingQueueFIFOWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](3)

	for round := 0; round < 4; round++ {
		for i := 0; i < 3; i++ {
			if err := rq.Enqueue(round*10 + i); err != nil {
				t.Fatalf("round %d enqueue %d: %v", round, i, err)
			}
		}
		if !rq.IsFull() {
			t.Fatalf("round %d: queue should be full", round)
		}
		if err := rq.Enqueue(99); !errors.Is(err, core.ErrQueueFull) {
			t.Fatalf("round %d: enqueue on full queue err = %v", round, err)
		}
		if v, _ := rq.Peek(); v != round*10 {
			t.Fatalf("round %d: peek = %d", round, v)
		}
		for i := 0; i < 3; i++ {
			v, err := rq.Dequeue()
			if err != nil {
				t.Fatalf("round %d dequeue: %v", round, err)
			}
			if v != round*10+i {
				t.Fatalf("round %d dequeue = %d, want %d", round, v, round*10+i)
			}
		}
	}

	if _, err := rq.Dequeue(); !errors.Is(err, core.ErrQueueEmpty) {
		t.Fatalf("dequeue on empty queue err = %v", err)
	}
	if _, err := rq.Peek(); !errors.Is(err, core.ErrQueueEmpty) {
		t.Fatalf("peek on empty queue err = %v", err)
	}
}

func TestRingQueueMinimumSize(t *testing.T) {
	rq := NewRingQueue[string](0)
	if rq.Cap() != 1 {
		t.Fatalf("Cap = %d, want 1", rq.Cap())
	}
}

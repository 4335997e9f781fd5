package controls

import (
	"sync"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/containers"
)

const DefaultQueueSize = 64

// Queue buffers commands between input sources and the frame loop. Push may
// be called from any goroutine; Drain is called once per frame by the owner
// of the animation state.
type Queue struct {
	mu      sync.Mutex
	ring    *containers.RingQueue[animation.Command]
	dropped uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ring: containers.NewRingQueue[animation.Command](size)}
}

// Push enqueues cmd. When the queue is full the command is dropped and the
// error is returned.
func (q *Queue) Push(cmd animation.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ring.Enqueue(cmd); err != nil {
		q.dropped++
		return err
	}
	return nil
}

// Drain removes every pending command, calling fn for each in FIFO order.
// fn runs outside the lock.
func (q *Queue) Drain(fn func(animation.Command)) int {
	q.mu.Lock()
	pending := make([]animation.Command, 0, q.ring.Len())
	for !q.ring.IsEmpty() {
		cmd, _ := q.ring.Dequeue()
		pending = append(pending, cmd)
	}
	q.mu.Unlock()

	for _, cmd := range pending {
		fn(cmd)
	}
	return len(pending)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Len()
}

// Dropped is the number of commands lost to a full queue.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

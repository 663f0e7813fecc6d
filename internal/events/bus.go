package events

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the default number of undelivered events a Bus holds.
const DefaultQueueSize = 5

// ErrBusClosed is returned by Post variants once Close has been called.
var ErrBusClosed = errors.New("event bus is closed")

// ErrBusFull is returned by TryPost when the queue has no room.
var ErrBusFull = errors.New("event bus is full")

// Stats is a snapshot of bus counters.
type Stats struct {
	Posted  uint64
	Drained uint64
	Dropped uint64
	Pending int
}

// Bus is a bounded multi-producer, single-consumer FIFO queue.
//
// Producers never need to know which session is current: fencing happens on
// the consumer side when events are drained.
type Bus struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once

	posted  atomic.Uint64
	drained atomic.Uint64
	dropped atomic.Uint64
}

// NewBus creates a bus holding at most size undelivered events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Bus{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Post enqueues ev, blocking while the queue is full. It returns
// ErrBusClosed if the bus is (or becomes) closed before ev is accepted.
func (b *Bus) Post(ev Event) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.ch <- ev:
		b.posted.Add(1)
		return nil
	case <-b.done:
		return ErrBusClosed
	}
}

// TryPost enqueues ev only if there is room. A full queue drops ev and
// returns ErrBusFull.
func (b *Bus) TryPost(ev Event) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.ch <- ev:
		b.posted.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		return ErrBusFull
	}
}

// Drain returns every event currently queued, oldest first, without blocking.
func (b *Bus) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-b.ch:
			out = append(out, ev)
		default:
			b.drained.Add(uint64(len(out)))
			return out
		}
	}
}

// Close wakes blocked producers and makes further posts fail. Events already
// queued can still be drained.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}

// Stats returns the current counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Posted:  b.posted.Load(),
		Drained: b.drained.Load(),
		Dropped: b.dropped.Load(),
		Pending: len(b.ch),
	}
}

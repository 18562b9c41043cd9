// Package queue provides an unbounded FIFO with explicit sender and receiver ends.
//
// Either side can observe that its peer has gone away: TryRecv reports ErrDisconnected
// once every Sender is closed and the backlog is drained, and Send reports
// ErrDisconnected once the Receiver is closed.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrEmpty is returned by TryRecv when no item is ready but senders remain.
	ErrEmpty = errors.New("queue empty")
	// ErrDisconnected is returned when the other end of the queue has been closed.
	ErrDisconnected = errors.New("queue peer disconnected")
)

type state[T any] struct {
	mu         sync.Mutex
	items      []T
	senders    int
	recvClosed bool
}

// Sender is a producer handle. Multiple goroutines may share one Sender, or take
// their own with Clone.
type Sender[T any] struct {
	s      *state[T]
	mu     sync.Mutex
	closed bool
}

// Receiver is the single consumer handle.
type Receiver[T any] struct {
	s *state[T]
}

// New creates a queue with one Sender and its Receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{
		items:   make([]T, 0),
		senders: 1,
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Send appends v. It never blocks.
func (tx *Sender[T]) Send(v T) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return ErrDisconnected
	}

	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if tx.s.recvClosed {
		return ErrDisconnected
	}
	tx.s.items = append(tx.s.items, v)
	return nil
}

// Clone returns an additional producer handle. The queue stays connected until every
// handle is closed.
func (tx *Sender[T]) Clone() *Sender[T] {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	tx.s.senders++
	return &Sender[T]{s: tx.s}
}

// Close releases this producer handle. Closing twice is a no-op.
func (tx *Sender[T]) Close() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return
	}
	tx.closed = true

	tx.s.mu.Lock()
	tx.s.senders--
	tx.s.mu.Unlock()
}

// TryRecv pops the oldest item without blocking. Items sent before the last Sender
// closed are still delivered before ErrDisconnected.
func (rx *Receiver[T]) TryRecv() (T, error) {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()

	var zero T
	if len(rx.s.items) == 0 {
		if rx.s.senders == 0 || rx.s.recvClosed {
			return zero, ErrDisconnected
		}
		return zero, ErrEmpty
	}

	v := rx.s.items[0]
	rx.s.items[0] = zero
	rx.s.items = rx.s.items[1:]
	if len(rx.s.items) == 0 {
		// Reset so the backing array does not grow without bound.
		rx.s.items = make([]T, 0)
	}
	return v, nil
}

// Close drops the backlog and makes every later Send fail.
func (rx *Receiver[T]) Close() {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()
	rx.s.recvClosed = true
	rx.s.items = nil
}

// Len returns the number of queued items.
func (rx *Receiver[T]) Len() int {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()
	return len(rx.s.items)
}

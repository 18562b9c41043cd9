package bridge

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/messages"
	"github.com/room4-2/basslink/queue"
)

// DefaultPollInterval is the pause between polling cycles.
const DefaultPollInterval = 15 * time.Millisecond

// ErrWouldBlock is returned by a Conn when an operation cannot complete immediately.
var ErrWouldBlock = errors.New("operation would block")

// Conn is a message-oriented duplex connection whose operations never block.
type Conn interface {
	// TryRecv returns the next whole message, or ErrWouldBlock if none is ready.
	TryRecv() ([]byte, error)
	// TrySend queues one whole message, or fails without sending any of it.
	TrySend(msg []byte) error
	Close() error
}

// Stats counts what the loop has done. Read it with Bridge.Stats.
type Stats struct {
	Cycles    uint64
	Sent      uint64
	SendFails uint64
	Snapshots uint64
	Dropped   uint64 // inbound buffers of the wrong size
	RecvFails uint64
}

// Bridge is the polling loop between the UI queues and the engine connection.
type Bridge struct {
	ID string

	conn      Conn
	intents   *queue.Receiver[messages.Intent]
	snapshots *queue.Sender[messages.Patch]
	interval  time.Duration
	log       *logrus.Entry

	mu      sync.Mutex
	stats   Stats
	lastErr string

	startOnce sync.Once
	done      chan struct{}
	stopped   bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithLogger sets the base log entry; the bridge adds its own fields.
func WithLogger(entry *logrus.Entry) Option {
	return func(b *Bridge) {
		if entry != nil {
			b.log = entry
		}
	}
}

// New creates a bridge over conn. It takes ownership of conn and of both queue ends.
func New(conn Conn, intents *queue.Receiver[messages.Intent], snapshots *queue.Sender[messages.Patch], opts ...Option) *Bridge {
	b := &Bridge{
		ID:        uuid.New().String(),
		conn:      conn,
		intents:   intents,
		snapshots: snapshots,
		interval:  DefaultPollInterval,
		log:       logrus.NewEntry(logrus.StandardLogger()),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithFields(logrus.Fields{"component": "bridge", "bridge": b.ID[:8]})
	return b
}

// Start runs the loop in its own goroutine. Calling Start more than once has no effect.
func (b *Bridge) Start() {
	b.startOnce.Do(func() {
		go b.Run()
	})
}

// Done is closed once the loop has terminated and released the connection.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Run executes polling cycles until a queue peer disappears.
func (b *Bridge) Run() {
	b.log.Infof("🎛️  Bridge started (poll every %s)", b.interval)
	for b.RunOnce() {
		time.Sleep(b.interval)
	}
}

// RunOnce performs one receive and one full drain of the intent queue. It returns
// false once the bridge has terminated.
func (b *Bridge) RunOnce() bool {
	b.mu.Lock()
	stopped := b.stopped
	if !stopped {
		b.stats.Cycles++
	}
	b.mu.Unlock()
	if stopped {
		return false
	}

	if !b.receive() {
		b.shutdown("snapshot consumer gone")
		return false
	}
	if !b.drain() {
		b.shutdown("intent producer gone")
		return false
	}
	return true
}

// receive makes one non-blocking read. It returns false if the snapshot queue's
// consumer has gone away.
func (b *Bridge) receive() bool {
	msg, err := b.conn.TryRecv()
	switch {
	case err == nil:
		b.clearRecvError()
		patch, ok := messages.DecodePatch(msg)
		if !ok {
			b.count(func(s *Stats) { s.Dropped++ })
			b.log.Debugf("Dropped %d byte inbound message (want %d)", len(msg), messages.PatchSize)
			return true
		}
		if err := b.snapshots.Send(patch); err != nil {
			return false
		}
		b.count(func(s *Stats) { s.Snapshots++ })
	case errors.Is(err, ErrWouldBlock):
	default:
		b.count(func(s *Stats) { s.RecvFails++ })
		b.logRecvError(err)
	}
	return true
}

// drain sends every pending intent. It returns false if the intent queue has no
// producers left.
func (b *Bridge) drain() bool {
	for {
		intent, err := b.intents.TryRecv()
		if errors.Is(err, queue.ErrEmpty) {
			return true
		}
		if err != nil {
			return false
		}

		buf := messages.Encode(intent)
		if err := b.conn.TrySend(buf); err != nil {
			b.count(func(s *Stats) { s.SendFails++ })
			m, _ := messages.ControlFor(intent)
			b.log.WithError(err).Warnf("❌ Dropped control message %s", m)
			continue
		}
		b.count(func(s *Stats) { s.Sent++ })
	}
}

// logRecvError logs a receive error unless it repeats the previous one, so a dead
// link does not flood the log at the poll rate.
func (b *Bridge) logRecvError(err error) {
	b.mu.Lock()
	repeated := b.lastErr == err.Error()
	b.lastErr = err.Error()
	b.mu.Unlock()
	if !repeated {
		b.log.WithError(err).Warn("Receive from engine failed")
	}
}

func (b *Bridge) clearRecvError() {
	b.mu.Lock()
	b.lastErr = ""
	b.mu.Unlock()
}

func (b *Bridge) count(f func(*Stats)) {
	b.mu.Lock()
	f(&b.stats)
	b.mu.Unlock()
}

func (b *Bridge) shutdown(reason string) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	stats := b.stats
	b.mu.Unlock()

	b.intents.Close()
	b.snapshots.Close()
	if err := b.conn.Close(); err != nil {
		b.log.WithError(err).Warn("Closing engine connection failed")
	}
	close(b.done)

	b.log.WithFields(logrus.Fields{
		"sent":      stats.Sent,
		"send_fail": stats.SendFails,
		"snapshots": stats.Snapshots,
		"dropped":   stats.Dropped,
	}).Infof("🔌 Bridge stopped: %s", reason)
}

// Stats returns a copy of the loop counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

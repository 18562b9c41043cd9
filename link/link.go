// Package link connects the bridge to the synthesis engine over a websocket.
//
// A Link is a bridge.Conn: TryRecv and TrySend never block. A read pump and a write
// pump own the socket; the bridge only touches their buffers.
package link

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/bridge"
)

const (
	defaultSendBuffer   = 256
	defaultRecvBuffer   = 64
	defaultWriteTimeout = 50 * time.Millisecond
	readLimit           = 64 * 1024
)

// ErrClosed is returned after the link has been closed locally.
var ErrClosed = errors.New("link closed")

// Options tune a Link. Zero values select defaults.
type Options struct {
	SendBuffer   int
	RecvBuffer   int
	WriteTimeout time.Duration
	Header       http.Header
	Logger       *logrus.Entry
}

// Link is a persistent websocket connection to the engine.
type Link struct {
	ID string

	conn         *websocket.Conn
	sendChan     chan []byte
	recvChan     chan []byte
	writeTimeout time.Duration
	log          *logrus.Entry

	mu       sync.RWMutex
	closed   bool
	readErr  error
	writeErr error
	dropped  uint64 // frames discarded after writeErr

	closeChan chan struct{}
	writeDone chan struct{}
	wg        sync.WaitGroup // read pump
}

// Dial connects to the engine at url. Failure here is not retried.
func Dial(ctx context.Context, url string, opts Options) (*Link, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to engine at %s (HTTP %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to engine at %s: %w", url, err)
	}
	l := newLink(conn, opts)
	l.log.Infof("✅ Connected to engine at %s", url)
	return l, nil
}

func newLink(conn *websocket.Conn, opts Options) *Link {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.RecvBuffer <= 0 {
		opts.RecvBuffer = defaultRecvBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	entry := opts.Logger
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}

	conn.SetReadLimit(readLimit)

	id := uuid.New().String()
	l := &Link{
		ID:           id,
		conn:         conn,
		sendChan:     make(chan []byte, opts.SendBuffer),
		recvChan:     make(chan []byte, opts.RecvBuffer),
		writeTimeout: opts.WriteTimeout,
		log:          entry.WithFields(logrus.Fields{"component": "link", "link": id[:8]}),
		closeChan:    make(chan struct{}),
		writeDone:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.readPump()
	go l.writePump()
	return l
}

// readPump moves whole inbound messages into recvChan. A full recvChan holds the pump
// back, which leaves further frames in the socket buffer.
func (l *Link) readPump() {
	defer l.wg.Done()
	for {
		messageType, message, err := l.conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			if !l.closed {
				l.readErr = fmt.Errorf("engine read: %w", err)
			}
			l.mu.Unlock()
			return
		}
		if messageType != websocket.BinaryMessage {
			l.log.Debugf("Ignoring %d byte non-binary frame", len(message))
			continue
		}

		select {
		case l.recvChan <- message:
		case <-l.closeChan:
			return
		}
	}
}

// writePump owns all socket writes.
func (l *Link) writePump() {
	defer close(l.writeDone)
	for {
		select {
		case <-l.closeChan:
			l.flush()
			l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout))
			l.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return
		case msg := <-l.sendChan:
			l.write(msg)
		}
	}
}

// flush writes whatever the bridge queued before Close.
func (l *Link) flush() {
	for {
		select {
		case msg := <-l.sendChan:
			l.write(msg)
		default:
			return
		}
	}
}

// write sends one frame. Once a write has failed the socket is not touched again;
// frames still queued behind the failure are discarded and counted.
func (l *Link) write(msg []byte) {
	l.mu.Lock()
	broken := l.writeErr != nil
	if broken {
		l.dropped++
	}
	l.mu.Unlock()
	if broken {
		l.log.Debugf("Dropped %d byte frame queued after write failure", len(msg))
		return
	}

	l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout))
	if err := l.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		l.mu.Lock()
		first := l.writeErr == nil
		if first {
			l.writeErr = fmt.Errorf("engine write: %w", err)
		}
		l.mu.Unlock()
		if first {
			l.log.WithError(err).Warn("❌ Write to engine failed")
		}
	}
}

// Dropped returns how many queued frames were discarded after a write failure.
func (l *Link) Dropped() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropped
}

// TryRecv returns the next inbound message or bridge.ErrWouldBlock. Once the read side
// has failed and the backlog is empty it returns that failure.
func (l *Link) TryRecv() ([]byte, error) {
	select {
	case msg := <-l.recvChan:
		return msg, nil
	default:
	}

	l.mu.RLock()
	closed, readErr := l.closed, l.readErr
	l.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if readErr != nil {
		return nil, readErr
	}
	return nil, bridge.ErrWouldBlock
}

// TrySend queues msg for the write pump. It fails with bridge.ErrWouldBlock when the
// send buffer is full, or with the write pump's error once the socket is broken.
func (l *Link) TrySend(msg []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	if l.writeErr != nil {
		return l.writeErr
	}

	select {
	case l.sendChan <- msg:
		return nil
	default:
		return bridge.ErrWouldBlock
	}
}

// Close sends a close frame, shuts the socket, and waits for both pumps.
func (l *Link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.closeChan)
	<-l.writeDone
	err := l.conn.Close()
	l.wg.Wait()

	l.log.Info("🔌 Engine link closed")
	return err
}

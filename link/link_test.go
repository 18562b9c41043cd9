package link

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/bridge"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// echoServer sends back every binary frame and, on "hangup", drops the connection.
func echoServer(t *testing.T) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte("ignored"))
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(data) == "hangup" {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dialTest(t *testing.T, url string) *Link {
	t.Helper()
	l, err := Dial(context.Background(), url, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// recvWithin polls TryRecv the way the bridge does.
func recvWithin(l *Link, d time.Duration) ([]byte, error) {
	deadline := time.Now().Add(d)
	for {
		msg, err := l.TryRecv()
		if !errors.Is(err, bridge.ErrWouldBlock) || time.Now().After(deadline) {
			return msg, err
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", Options{Logger: quietLogger()})
	if err == nil {
		t.Fatal("Dial to a closed port succeeded")
	}
}

func TestSendAndReceiveWholeMessages(t *testing.T) {
	l := dialTest(t, echoServer(t))

	if _, err := l.TryRecv(); !errors.Is(err, bridge.ErrWouldBlock) {
		t.Fatalf("TryRecv on idle link = %v, want ErrWouldBlock", err)
	}

	want := [][]byte{{1, 2, 3, 4}, make([]byte, 76)}
	for _, msg := range want {
		if err := l.TrySend(msg); err != nil {
			t.Fatalf("TrySend: %v", err)
		}
	}
	for i, w := range want {
		got, err := recvWithin(l, 2*time.Second)
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if string(got) != string(w) {
			t.Errorf("message %d = %v, want %v", i, got, w)
		}
	}
}

func TestPeerHangupSurfacesAsError(t *testing.T) {
	l := dialTest(t, echoServer(t))

	if err := l.TrySend([]byte("hangup")); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	_, err := recvWithin(l, 2*time.Second)
	if err == nil || errors.Is(err, bridge.ErrWouldBlock) {
		t.Fatalf("TryRecv after hangup = %v, want read error", err)
	}
}

func TestSendBufferFullWouldBlock(t *testing.T) {
	// No write pump drains this buffer.
	l := &Link{sendChan: make(chan []byte, 1)}

	if err := l.TrySend([]byte{1}); err != nil {
		t.Fatalf("first TrySend: %v", err)
	}
	if err := l.TrySend([]byte{2}); !errors.Is(err, bridge.ErrWouldBlock) {
		t.Errorf("TrySend on full buffer = %v, want ErrWouldBlock", err)
	}
}

func TestClose(t *testing.T) {
	l := dialTest(t, echoServer(t))

	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := l.TrySend([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Errorf("TrySend after Close = %v, want ErrClosed", err)
	}
	if _, err := l.TryRecv(); !errors.Is(err, ErrClosed) {
		t.Errorf("TryRecv after Close = %v, want ErrClosed", err)
	}
}

func TestFramesQueuedAfterWriteFailureAreCounted(t *testing.T) {
	l := dialTest(t, echoServer(t))

	// Break the socket under the idle write pump, then write the way the pump does.
	l.conn.Close()
	for i := 0; i < 3; i++ {
		l.write([]byte{byte(i)})
	}

	if err := l.TrySend([]byte{9}); err == nil || errors.Is(err, bridge.ErrWouldBlock) {
		t.Errorf("TrySend after write failure = %v, want write error", err)
	}
	if got := l.Dropped(); got != 2 {
		t.Errorf("Dropped = %d, want 2 (first frame failed, rest discarded)", got)
	}
}

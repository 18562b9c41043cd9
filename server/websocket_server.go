package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/config"
	"github.com/room4-2/basslink/engine"
	"github.com/room4-2/basslink/messages"
)

const snapshotWriteTimeout = time.Second

// Server exposes the emulated engine on /ws. Like the hardware it stands in for, it
// talks to one peer at a time.
type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	engine     *engine.Engine
	store      engine.Store
	config     *config.Config
	log        *logrus.Entry

	mu     sync.Mutex
	paired bool
	peer   *websocket.Conn
}

func NewServerWebsocket(cfg *config.Config, eng *engine.Engine, store engine.Store, log *logrus.Entry) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		config: cfg,
		log:    log.WithField("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.EnginePort),
		Handler: s.Handler(),
		// No ReadTimeout/WriteTimeout: the peer connection is long-lived.
	}

	return s
}

// Handler returns the routes, for mounting under a test server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/patch", s.handlePatch)
	return mux
}

// Start begins listening for connections
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Listen binds the engine port without serving yet, so a caller can dial it as soon as
// Listen returns.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", s.config.EnginePort, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Infof("🚀 Engine emulator starting on port %d", s.config.EnginePort)
	s.log.Infof("📡 Engine endpoint: ws://localhost:%d/ws", s.config.EnginePort)
	return s.httpServer.Serve(ln)
}

// Shutdown drops the peer and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("🛑 Shutting down engine emulator...")
	s.mu.Lock()
	if s.peer != nil {
		s.peer.Close()
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// claim reserves the single peer slot.
func (s *Server) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paired {
		return false
	}
	s.paired = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paired = false
	s.peer = nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.claim() {
		s.log.Warnf("Refusing %s: engine already paired", r.RemoteAddr)
		http.Error(w, "engine already paired", http.StatusConflict)
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.peer = conn
	s.mu.Unlock()

	id := uuid.New().String()
	peerLog := s.log.WithField("peer", id[:8])
	ctx := context.Background()

	if err := s.store.RecordPeer(ctx, id, r.RemoteAddr); err != nil {
		peerLog.WithError(err).Warn("Peer not recorded")
	}
	defer func() {
		if err := s.store.ClearPeer(ctx); err != nil {
			peerLog.WithError(err).Warn("Peer not cleared")
		}
	}()

	peerLog.Infof("✅ Peer connected from %s", r.RemoteAddr)

	if err := s.sendSnapshot(conn, s.engine.Snapshot()); err != nil {
		peerLog.WithError(err).Warn("❌ Initial snapshot failed")
		return
	}

	s.serve(ctx, conn, peerLog)
	peerLog.Info("🔌 Peer disconnected")
}

// serve applies control messages until the peer goes away, answering each accepted
// change with a fresh snapshot.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, log *logrus.Entry) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Peer read failed")
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			log.Debugf("Ignoring %d byte non-binary frame", len(data))
			continue
		}

		msg, err := messages.DecodeControl(data)
		if err != nil {
			log.WithError(err).Warn("Rejected control message")
			continue
		}
		patch, err := s.engine.Apply(ctx, msg)
		if err != nil {
			log.WithError(err).Warn("Control message not applied")
			continue
		}
		if err := s.sendSnapshot(conn, patch); err != nil {
			log.WithError(err).Warn("❌ Snapshot push failed")
			return
		}
	}
}

func (s *Server) sendSnapshot(conn *websocket.Conn, p messages.Patch) error {
	raw, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(snapshotWriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, raw)
}

func (s *Server) isPaired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paired
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "paired": s.isPaired()})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

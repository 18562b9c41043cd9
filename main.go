package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/bridge"
	"github.com/room4-2/basslink/config"
	"github.com/room4-2/basslink/engine"
	"github.com/room4-2/basslink/link"
	"github.com/room4-2/basslink/messages"
	"github.com/room4-2/basslink/queue"
	"github.com/room4-2/basslink/server"
	"github.com/room4-2/basslink/tui"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := config.SetupLogging(cfg)
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	log := logrus.WithField("mode", cfg.Mode)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case "engine":
		srv := newEngineServer(ctx, cfg, log)
		go func() {
			<-ctx.Done()
			log.Info("Received shutdown signal...")
			shutdown(srv, log)
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}

	case "ui":
		if err := runPanel(ctx, cfg, log); err != nil {
			reportToTerminal(os.Stderr, cfg, err)
			log.Fatalf("Panel error: %v", err)
		}

	case "both":
		srv := newEngineServer(ctx, cfg, log)
		ln, err := srv.Listen()
		if err != nil {
			reportToTerminal(os.Stderr, cfg, err)
			log.Fatalf("Server error: %v", err)
		}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Server error: %v", err)
			}
		}()

		err = runPanel(ctx, cfg, log)
		shutdown(srv, log)
		if err != nil {
			reportToTerminal(os.Stderr, cfg, err)
			log.Fatalf("Panel error: %v", err)
		}

	default:
		log.Fatalf("Unknown MODE: %s", cfg.Mode)
	}

	log.Info("Stopped")
}

// reportToTerminal echoes a fatal error to w when the log goes to a file, so a
// failed connection is not silent.
func reportToTerminal(w io.Writer, cfg *config.Config, err error) {
	if cfg.LogFile == "" {
		return
	}
	fmt.Fprintf(w, "basslink: %v (log: %s)\n", err, cfg.LogFile)
}

func newEngineServer(ctx context.Context, cfg *config.Config, log *logrus.Entry) *server.Server {
	store := engine.NewStore(cfg.RedisURL, cfg.RedisPassword, log)
	eng, err := engine.New(ctx, store, log)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	return server.NewServerWebsocket(cfg, eng, store, log)
}

func shutdown(srv *server.Server, log *logrus.Entry) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
}

// runPanel connects to the engine, starts the bridge, and runs the panel until the user
// quits or ctx is cancelled. A failed initial connection is returned, not retried.
func runPanel(ctx context.Context, cfg *config.Config, log *logrus.Entry) error {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := link.Dial(dialCtx, cfg.EngineURL, link.Options{
		SendBuffer:   cfg.SendBuffer,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	intentTx, intentRx := queue.New[messages.Intent]()
	snapshotTx, snapshotRx := queue.New[messages.Patch]()

	b := bridge.New(conn, intentRx, snapshotTx,
		bridge.WithPollInterval(cfg.PollInterval),
		bridge.WithLogger(log))
	b.Start()

	panel := tui.New(intentTx, snapshotRx, tui.PolicyFor(cfg.ApplySnapshots), log)
	program := tea.NewProgram(panel, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()

	// Closing both UI ends stops the bridge within one cycle.
	intentTx.Close()
	snapshotRx.Close()
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		log.Warn("Bridge did not stop in time")
	}

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

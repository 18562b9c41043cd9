package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration
type Config struct {
	Mode           string // "ui", "engine", or "both"
	EngineURL      string // websocket URL the bridge dials
	EnginePort     int    // port the engine emulator listens on
	PollInterval   time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int // outbound messages the link buffers before reporting would-block
	RedisURL       string
	RedisPassword  string
	ApplySnapshots bool // replace the displayed patch with engine snapshots
	AllowedOrigins []string
	LogLevel       string
	LogFile        string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Mode:           "ui",
		EngineURL:      "ws://bela.local:5555/ws",
		EnginePort:     5555,
		PollInterval:   15 * time.Millisecond,
		WriteTimeout:   50 * time.Millisecond,
		SendBuffer:     256,
		RedisURL:       "localhost:6379",
		RedisPassword:  "",
		ApplySnapshots: false,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
	}

	// Optional: MODE ("ui", "engine", or "both")
	if mode := os.Getenv("MODE"); mode != "" {
		switch mode {
		case "ui", "engine", "both":
			config.Mode = mode
		default:
			return nil, fmt.Errorf("invalid MODE: must be 'ui', 'engine', or 'both'")
		}
	}

	// Optional: ENGINE_PORT
	if port := os.Getenv("ENGINE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid ENGINE_PORT: %w", err)
		}
		config.EnginePort = p
	}

	// Optional: ENGINE_URL. In "both" mode the bridge talks to the local emulator.
	if url := os.Getenv("ENGINE_URL"); url != "" {
		config.EngineURL = url
	} else if config.Mode == "both" {
		config.EngineURL = fmt.Sprintf("ws://localhost:%d/ws", config.EnginePort)
	}

	// Optional: POLL_INTERVAL_MS
	if poll := os.Getenv("POLL_INTERVAL_MS"); poll != "" {
		ms, err := strconv.Atoi(poll)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid POLL_INTERVAL_MS: %q", poll)
		}
		config.PollInterval = time.Duration(ms) * time.Millisecond
	}

	// Optional: WRITE_TIMEOUT_MS
	if timeout := os.Getenv("WRITE_TIMEOUT_MS"); timeout != "" {
		ms, err := strconv.Atoi(timeout)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid WRITE_TIMEOUT_MS: %q", timeout)
		}
		config.WriteTimeout = time.Duration(ms) * time.Millisecond
	}

	// Optional: SEND_BUFFER
	if size := os.Getenv("SEND_BUFFER"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SEND_BUFFER: %q", size)
		}
		config.SendBuffer = n
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: APPLY_SNAPSHOTS
	if apply := os.Getenv("APPLY_SNAPSHOTS"); apply != "" {
		b, err := strconv.ParseBool(apply)
		if err != nil {
			return nil, fmt.Errorf("invalid APPLY_SNAPSHOTS: %w", err)
		}
		config.ApplySnapshots = b
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: LOG_LEVEL
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	// Optional: LOG_FILE. The control surface owns the terminal, so UI modes log to a
	// file unless told otherwise.
	config.LogFile = os.Getenv("LOG_FILE")
	if config.LogFile == "" && config.Mode != "engine" {
		config.LogFile = "basslink.log"
	}

	return config, nil
}

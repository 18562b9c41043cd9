package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MODE", "ENGINE_URL", "ENGINE_PORT", "POLL_INTERVAL_MS", "WRITE_TIMEOUT_MS",
		"SEND_BUFFER", "REDIS_URL", "REDIS_PASSWORD", "APPLY_SNAPSHOTS",
		"ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != "ui" {
		t.Errorf("Mode = %q, want ui", cfg.Mode)
	}
	if cfg.EngineURL != "ws://bela.local:5555/ws" {
		t.Errorf("EngineURL = %q", cfg.EngineURL)
	}
	if cfg.PollInterval != 15*time.Millisecond {
		t.Errorf("PollInterval = %v, want 15ms", cfg.PollInterval)
	}
	if cfg.ApplySnapshots {
		t.Error("ApplySnapshots defaults to true")
	}
	if cfg.LogFile != "basslink.log" {
		t.Errorf("LogFile = %q, want basslink.log in ui mode", cfg.LogFile)
	}
}

func TestLoadConfigBothModeDialsLocalEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODE", "both")
	t.Setenv("ENGINE_PORT", "7000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EngineURL != "ws://localhost:7000/ws" {
		t.Errorf("EngineURL = %q", cfg.EngineURL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODE", "engine")
	t.Setenv("POLL_INTERVAL_MS", "5")
	t.Setenv("APPLY_SNAPSHOTS", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PollInterval != 5*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if !cfg.ApplySnapshots {
		t.Error("ApplySnapshots not set")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.LogFile != "" {
		t.Errorf("engine mode LogFile = %q, want stderr", cfg.LogFile)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"MODE":             "dsp",
		"ENGINE_PORT":      "x",
		"POLL_INTERVAL_MS": "0",
		"SEND_BUFFER":      "-1",
		"APPLY_SNAPSHOTS":  "maybe",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("%s=%q accepted", k, v)
			}
		})
	}
}

func TestSetupLoggingRejectsBadLevel(t *testing.T) {
	if _, err := SetupLogging(&Config{LogLevel: "loud"}); err == nil {
		t.Error("bad level accepted")
	}
}

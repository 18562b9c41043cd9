package main

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/config"
	"github.com/room4-2/basslink/engine"
	"github.com/room4-2/basslink/messages"
	"github.com/room4-2/basslink/server"
)

func startEngine(t *testing.T) (string, *engine.Engine) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	store := engine.NewMemoryStore()
	eng, err := engine.New(context.Background(), store, log)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	srv := server.NewServerWebsocket(&config.Config{AllowedOrigins: []string{"*"}}, eng, store, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws", eng
}

func runProbe(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseIntent(t *testing.T) {
	in, err := parseIntent("osc2", "waveform", "saw")
	if err != nil {
		t.Fatalf("parseIntent: %v", err)
	}
	want := messages.SetParameter{Section: messages.SectionOsc2, Parameter: messages.ParamWaveform, Value: messages.WaveformValue(messages.WaveSaw)}
	if in != want {
		t.Errorf("intent = %#v, want %#v", in, want)
	}

	for _, bad := range [][3]string{
		{"osc4", "coarse", "1"},
		{"filter", "wobble", "1"},
		{"osc1", "coarse", "many"},
	} {
		if _, err := parseIntent(bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("parseIntent(%v): expected error", bad)
		}
	}
}

func TestSnapshotCmd(t *testing.T) {
	url, _ := startEngine(t)

	out, err := runProbe(t, "snapshot", "--url", url, "--timeout", "2s")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var p messages.Patch
	if err := sonic.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("output is not a patch: %v\n%s", err, out)
	}
	if p != messages.DefaultPatch() {
		t.Errorf("patch = %+v, want default", p)
	}
}

func TestSendCmd(t *testing.T) {
	url, eng := startEngine(t)

	out, err := runProbe(t, "send", "filter", "cutoff", "880", "--url", url, "--timeout", "2s")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, `"cutoff": 880`) {
		t.Errorf("output missing new cutoff:\n%s", out)
	}
	if eng.Snapshot().Filter.Cutoff != 880 {
		t.Errorf("engine cutoff = %v", eng.Snapshot().Filter.Cutoff)
	}
}

func TestSendCmdRejectedByEngineTimesOut(t *testing.T) {
	url, _ := startEngine(t)

	start := time.Now()
	_, err := runProbe(t, "send", "global", "gain", "1", "--url", url, "--timeout", "200ms")
	if err == nil {
		t.Fatal("send to a missing parameter succeeded")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("send did not honor --timeout")
	}
}

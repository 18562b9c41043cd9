package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/room4-2/basslink/config"
)

func TestReportToTerminal(t *testing.T) {
	dialErr := errors.New("failed to connect to engine at ws://bela.local:5555/ws")

	t.Run("log file hides the error", func(t *testing.T) {
		var out strings.Builder
		reportToTerminal(&out, &config.Config{LogFile: "basslink.log"}, dialErr)
		if !strings.Contains(out.String(), "failed to connect to engine") {
			t.Errorf("terminal output = %q", out.String())
		}
		if !strings.Contains(out.String(), "basslink.log") {
			t.Errorf("terminal output does not name the log file: %q", out.String())
		}
	})

	t.Run("stderr logging prints once", func(t *testing.T) {
		var out strings.Builder
		reportToTerminal(&out, &config.Config{}, dialErr)
		if out.Len() != 0 {
			t.Errorf("duplicate output %q", out.String())
		}
	})
}

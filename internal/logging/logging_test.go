package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New("loud", "console"); err == nil {
		t.Fatalf("New accepted unknown level")
	}
}

func TestCore_SplitsStreamsAndFilters(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	log := zap.New(newCore(zapcore.InfoLevel, "json", zapcore.AddSync(&out), zapcore.AddSync(&errOut)))
	log.Debug("pipeline: hidden")
	log.Info("pipeline: started", zap.String("run_id", "abc"))
	log.Error("pipeline: failed")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("stdout lines = %q", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if entry["msg"] != "pipeline: started" || entry["run_id"] != "abc" {
		t.Fatalf("entry = %v", entry)
	}
	if !strings.Contains(errOut.String(), "pipeline: failed") || strings.Contains(out.String(), "failed") {
		t.Fatalf("error not routed to stderr: out=%q err=%q", out.String(), errOut.String())
	}
}

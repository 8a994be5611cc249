package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LogConfig{Format: "json"})
	l.Info().Str("reconciliation_id", "rec-1").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["message"] != "hello" || entry["reconciliation_id"] != "rec-1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewConsoleFallback(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LogConfig{Format: "pretty"})
	l.Info().Msg("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("unknown format should use console output, got %q", buf.String())
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Error("Setup() accepted an unknown level")
	}
}

func TestSetupFileAndComponent(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()

	path := filepath.Join(t.TempDir(), "app.log")
	if err := Setup(LogConfig{Level: "info", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	var buf bytes.Buffer
	log.Logger = log.Logger.Output(&buf)
	componentLog := WithComponent("poller")
	componentLog.Info().Msg("tick")
	requestLog := WithRequestID("req-1")
	requestLog.Info().Msg("served")

	out := buf.String()
	if !strings.Contains(out, `"component":"poller"`) || !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("output = %s", out)
	}
}

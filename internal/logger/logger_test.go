package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "")
	l := Logger()
	if l.GetLevel().String() != "debug" {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}

	t.Setenv("LOG_LEVEL", "nonsense")
	l = Logger()
	if l.GetLevel().String() != "info" {
		t.Fatalf("invalid level should fall back to info, got %s", l.GetLevel())
	}
}

func TestEntryWritesStructuredFields(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	l := Logger()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithComponent("marketdata").
		WithFields(Fields{"provider": "coingecko"}).
		WithError(errors.New("boom")).
		Warn("provider failed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "marketdata" || line["provider"] != "coingecko" {
		t.Fatalf("missing fields: %+v", line)
	}
	if line["message"] != "provider failed" || line["level"] != "warning" {
		t.Fatalf("unexpected message/level: %+v", line)
	}
	if line["error"] != "boom" {
		t.Fatalf("expected error field, got %+v", line)
	}
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(&contextHandler{Handler: newHandler(&buf, "debug", "json")})

	ctx := WithRequestID(context.Background(), "req-42")
	l.InfoContext(ctx, "hello", slog.String("k", "v"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if rec["request_id"] != "req-42" {
		t.Errorf("expected request_id, got %v", rec["request_id"])
	}
	if _, ok := rec["timestamp"]; !ok {
		t.Errorf("expected timestamp key, got %v", rec)
	}
	if rec["k"] != "v" {
		t.Errorf("expected attribute k, got %v", rec["k"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestID_Empty(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	read := func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
	return slog.New(handler), read
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "wizard"), slog.LevelInfo, "wizard.begin",
		slog.String("status", "ok"),
		slog.String("kind", "Signal"),
	)

	tokens := strings.Split(read(), " ")
	expected := []string{"ts=", "level=INFO", "component=wizard", "event=wizard.begin", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "kind=signal"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%v)", len(tokens), tokens)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, read := newTestHandler(t, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	LogEvent(ctx, log.With("component", "analysis"), slog.LevelError, "dispatch.fail",
		slog.String("status", "error"),
		slog.Int("http_code", 502),
		slog.Duration("duration", 1500*time.Millisecond),
	)

	line := read()
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"analysis"`, `"event":"dispatch.fail"`, `"status":"fail"`, `"rid":"rid-json"`, `"duration_ms":1500`, `"http_code":502`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	rawRID := BuildRID(123, 456, 789)
	LogEvent(WithRID(context.Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := read()
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("expected default component, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	log, read := newTestHandler(t, formatJSON)
	rawRID := "12:34:56"
	LogEvent(WithRID(context.Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := read()
	if !strings.Contains(line, `"rid":"c.y.1k"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
}

func TestStructuredHandlerRedactsToken(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	err := errors.New(`Post "https://api.telegram.org/bot123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw_/getMe": timeout`)
	LogEvent(context.Background(), log, slog.LevelWarn, "tg.call", slog.Any("err", err))

	line := read()
	if strings.Contains(line, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw_") {
		t.Fatalf("token leaked: %s", line)
	}
	if !strings.Contains(line, "<redacted>") {
		t.Fatalf("expected redaction marker, got %s", line)
	}
}

func TestStructuredHandlerGroupsAndLevel(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	log.Debug("hidden")
	log.WithGroup("store").Info("opened", slog.String("backend", "file"))

	line := read()
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line should be filtered: %s", line)
	}
	if !strings.Contains(line, "store.backend=file") || !strings.Contains(line, "event=opened") {
		t.Fatalf("unexpected line: %s", line)
	}
}

func TestDiscardLoggerBeforeInit(t *testing.T) {
	// Package-level loggers are usable without InitLogger.
	Info(context.Background(), "session", "noop")
	DB.Info("noop")
}

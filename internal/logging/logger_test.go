package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestLoggerStampsServiceAndContext(t *testing.T) {
	log := New("inventory", "debug", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithUser(ctx, "7", "admin")
	log.WithContext(ctx).Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["service"] != "inventory" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["trace_id"] != "trace-1" || entry["user_id"] != "7" || entry["role"] != "admin" {
		t.Fatalf("context fields missing: %v", entry)
	}
}

func TestLogRequestLevels(t *testing.T) {
	log := New("http", "info", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.LogRequest(context.Background(), http.MethodGet, "/api/objects", http.StatusInternalServerError, time.Millisecond)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "error" {
		t.Fatalf("expected error level for 500, got %v", entry["level"])
	}
	if entry["path"] != "/api/objects" {
		t.Fatalf("unexpected path %v", entry["path"])
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	log := New("x", "loud", "text")
	if log.GetLevel().String() != "info" {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}

func TestContextHelpersOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	if GetTraceID(ctx) != "" || GetUserID(ctx) != "" || GetRole(ctx) != "" {
		t.Fatalf("expected empty values")
	}
	if WithTraceID(ctx, "") != ctx {
		t.Fatalf("empty trace id should not wrap the context")
	}
	if NewTraceID() == NewTraceID() {
		t.Fatalf("trace ids should differ")
	}
}

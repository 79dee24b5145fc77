package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMemoryLog_NewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(2)
	for _, action := range []string{"a", "b", "c"} {
		if err := log.Log(ctx, Entry{Action: action}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	entries, err := log.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "c" || entries[1].Action != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled")
	}

	limited, _ := log.Recent(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(limited))
	}
}

type failingLogger struct{}

func (failingLogger) Log(context.Context, Entry) error { return errors.New("down") }

func TestMultiLogger_SharesIDAndJoinsErrors(t *testing.T) {
	ctx := context.Background()
	first := NewMemoryLog(10)
	second := NewMemoryLog(10)
	multi := NewMultiLogger(first, nil, second, failingLogger{})

	err := multi.Log(ctx, Entry{Action: ActionExportReport, Metadata: json.RawMessage(`{"format":"pdf"}`)})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected joined error, got %v", err)
	}

	a, _ := first.Recent(ctx, 1)
	b, _ := second.Recent(ctx, 1)
	if a[0].ID != b[0].ID {
		t.Fatalf("expected shared id, got %s and %s", a[0].ID, b[0].ID)
	}
	if a[0].PayloadDigest == "" {
		t.Fatalf("expected payload digest")
	}
}

func TestInsertAndRecentQueries(t *testing.T) {
	query, args, err := insertQuery(normalize(Entry{Action: ActionLoadSample}, testTime))
	if err != nil {
		t.Fatalf("insert query: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO audit_logs (id,actor,role,verified,action") {
		t.Fatalf("unexpected insert: %s", query)
	}
	if !strings.Contains(query, "$12") || len(args) != 12 {
		t.Fatalf("expected 12 dollar placeholders, got %s (%d args)", query, len(args))
	}
	if args[7] != nil {
		t.Fatalf("expected NULL metadata, got %v", args[7])
	}

	query, _, err = recentQuery(25)
	if err != nil {
		t.Fatalf("recent query: %v", err)
	}
	if !strings.HasSuffix(query, "FROM audit_logs ORDER BY created_at DESC LIMIT 25") {
		t.Fatalf("unexpected select: %s", query)
	}
}

func TestFeedHandler(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(10)
	_ = log.Log(ctx, Entry{Action: ActionUploadBudget, Role: "cfo"})
	_ = log.Log(ctx, Entry{Action: ActionExportReport, Role: "investor", IP: "10.0.0.1"})

	handler, err := NewFeedHandler(log)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/audit?limit=1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Log []struct {
			Time   string `json:"time"`
			Action string `json:"action"`
			Role   string `json:"role"`
			IP     string `json:"ip"`
		} `json:"log"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Log) != 1 || body.Log[0].Action != ActionExportReport || body.Log[0].IP != "10.0.0.1" || body.Log[0].Time == "" {
		t.Fatalf("unexpected feed: %+v", body.Log)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/audit?limit=zero", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	if got := ClientIP(req); got != "192.0.2.7" {
		t.Fatalf("expected remote host, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded ip, got %s", got)
	}
}

var testTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

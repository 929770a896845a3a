package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	mw := RequestLogger(logging.NewWithWriter("info", &buf))
	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})).ServeHTTP(rec, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["level"] != "WARN" {
		t.Fatalf("expected WARN for 5xx, got %v", line["level"])
	}
	if line["status"] != float64(http.StatusServiceUnavailable) {
		t.Fatalf("expected status 503, got %v", line["status"])
	}
	if line["request_id"] != "req-123" {
		t.Fatalf("expected request id, got %v", line["request_id"])
	}
}

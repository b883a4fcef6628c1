package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/ready", "/health/ready"},
		{"/ui/videos", "/ui/videos"},
		{"/ui/videos/new", "/ui/videos/new"},
		{"/ui/videos/42", "/ui/videos/{id}"},
		{"/ui/videos/42/edit", "/ui/videos/{id}/edit"},
		{"/ui/videos/7/tests", "/ui/videos/{id}/tests"},
		{"/ui/videos/7/delete", "/ui/videos/{id}/delete"},
		{"/ui/videos/abc/edit", "other"},
		{"/ui/videos/7/unknown", "other"},
		{"/static/css/output.css", "/static/*"},
		{"/wp-login.php", "other"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/ui/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			if w.Header().Get("Retry-After") != "60" {
				t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body.Error.Code != "RATE_LIMITED" {
				t.Errorf("неожиданное тело 429: %v %+v", err, body)
			}
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("коды = %v, ожидалось [200 200 429]", codes)
	}

	// Другой IP не ограничен.
	req := httptest.NewRequest(http.MethodPost, "/ui/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("код для другого IP = %d", w.Code)
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("oops"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ui/videos", nil))

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status=502") || !strings.Contains(out, "bytes=4") {
		t.Errorf("неожиданная запись лога: %s", out)
	}
}

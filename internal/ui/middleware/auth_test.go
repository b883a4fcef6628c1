package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/ui/auth"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// requestWithSession создаёт запрос с зашифрованным cookie сессии.
func requestWithSession(t *testing.T, sm *auth.SessionManager, data *auth.SessionData) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/ui/videos", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func setup(t *testing.T) (*auth.SessionManager, *state.Store, http.Handler, *bool) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-key", false)
	if err != nil {
		t.Fatal(err)
	}
	store := state.NewStore(10, time.Hour, 3)
	called := new(bool)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		token, err := apiclient.ContextToken(r.Context())
		if err != nil || token != "tok" {
			t.Errorf("токен в контексте: %q, %v", token, err)
		}
		if StateFromContext(r.Context()) == nil || SessionFromContext(r.Context()) == nil {
			t.Error("сессия и состояние должны быть в контексте")
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := NewUIAuth(sm, store, testLogger()).Middleware()(next)
	return sm, store, handler, called
}

func TestUIAuth_NoCookieRedirects(t *testing.T) {
	_, _, handler, called := setup(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui/videos", nil))

	if w.Code != http.StatusFound || w.Header().Get("Location") != LoginPath {
		t.Errorf("ожидался redirect на %s, получено %d %q", LoginPath, w.Code, w.Header().Get("Location"))
	}
	if *called {
		t.Error("обработчик не должен вызываться")
	}
}

func TestUIAuth_ValidSession(t *testing.T) {
	sm, store, handler, called := setup(t)
	store.Create("sid", "tok", "alice")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSession(t, sm, &auth.SessionData{SessionID: "sid", Token: "tok", Username: "alice"}))

	if w.Code != http.StatusOK || !*called {
		t.Errorf("ожидался вызов обработчика, код %d", w.Code)
	}
}

func TestUIAuth_RestoresStateAfterRestart(t *testing.T) {
	sm, store, handler, called := setup(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSession(t, sm, &auth.SessionData{SessionID: "sid", Token: "tok", Username: "alice"}))

	if !*called {
		t.Fatal("обработчик должен вызываться")
	}
	if _, ok := store.Get("sid"); !ok {
		t.Error("состояние сессии должно быть восстановлено")
	}
}

func TestUIAuth_RevokedSessionLogsOut(t *testing.T) {
	sm, store, handler, called := setup(t)
	store.Create("sid", "tok", "alice")
	store.Revoke("sid")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSession(t, sm, &auth.SessionData{SessionID: "sid", Token: "tok", Username: "alice"}))

	if w.Code != http.StatusFound || w.Header().Get("Location") != LoginExpiredPath {
		t.Errorf("ожидался redirect на %s, получено %d %q", LoginExpiredPath, w.Code, w.Header().Get("Location"))
	}
	if *called {
		t.Error("обработчик не должен вызываться")
	}
	if _, ok := store.Get("sid"); ok {
		t.Error("состояние отозванной сессии должно быть удалено")
	}
}

func TestUIAuth_ExpiredToken(t *testing.T) {
	sm, _, handler, called := setup(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSession(t, sm, &auth.SessionData{
		SessionID: "sid", Token: "tok", ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}))

	if w.Header().Get("Location") != LoginExpiredPath || *called {
		t.Errorf("истёкший токен должен вести на %s", LoginExpiredPath)
	}
}

func TestUIAuth_CorruptedCookie(t *testing.T) {
	_, _, handler, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/ui/videos", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("ожидался redirect, получено %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("повреждённый cookie должен быть очищен")
	}
}

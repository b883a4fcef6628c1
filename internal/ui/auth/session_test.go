package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestSessionEncryptDecryptRoundTrip проверяет шифрование и дешифрование SessionData.
func TestSessionEncryptDecryptRoundTrip(t *testing.T) {
	sm, err := NewSessionManager("", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}

	original := &SessionData{
		SessionID: "4b0c3a1e-0000-4000-8000-000000000001",
		Token:     "test-token-12345",
		Username:  "admin",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}

	encrypted, err := sm.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if *decrypted != *original {
		t.Errorf("сессия после дешифрования отличается: want %+v, got %+v", original, decrypted)
	}
}

// TestSessionManagerWithStringKey проверяет инициализацию с произвольной строкой-ключом.
func TestSessionManagerWithStringKey(t *testing.T) {
	sm, err := NewSessionManager("my-secret-key-for-testing", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager с string-ключом: %v", err)
	}

	data := &SessionData{Token: "token123", Username: "user"}

	encrypted, err := sm.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.Token != data.Token {
		t.Errorf("Token: want %q, got %q", data.Token, decrypted.Token)
	}
}

// TestSessionDecryptWithWrongKey проверяет, что дешифрование чужим ключом не работает.
func TestSessionDecryptWithWrongKey(t *testing.T) {
	sm1, _ := NewSessionManager("key-one", false)
	sm2, _ := NewSessionManager("key-two", false)

	encrypted, err := sm1.Encrypt(&SessionData{Token: "secret"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	if _, err := sm2.Decrypt(encrypted); err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}
}

// TestSessionIsExpired проверяет логику проверки истечения токена.
func TestSessionIsExpired(t *testing.T) {
	expired := &SessionData{ExpiresAt: time.Now().Add(-1 * time.Minute).Unix()}
	if !expired.IsExpired() {
		t.Error("Ожидалось IsExpired()=true для истёкшего токена")
	}

	fresh := &SessionData{ExpiresAt: time.Now().Add(1 * time.Minute).Unix()}
	if fresh.IsExpired() {
		t.Error("Ожидалось IsExpired()=false для свежего токена")
	}

	// Непрозрачный токен без срока действия
	opaque := &SessionData{Token: "opaque"}
	if opaque.IsExpired() {
		t.Error("Ожидалось IsExpired()=false для токена без срока действия")
	}
}

// TestSessionCookieSetAndGet проверяет установку и извлечение cookie.
func TestSessionCookieSetAndGet(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	data := &SessionData{
		SessionID: "sid-1",
		Token:     "access-123",
		Username:  "admin",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}

	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie не установлен")
	}

	req := httptest.NewRequest(http.MethodGet, "/ui/videos", nil)
	req.AddCookie(cookies[0])

	got, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ошибка чтения сессии из cookie: %v", err)
	}
	if got == nil {
		t.Fatal("Сессия не найдена")
	}
	if got.Token != data.Token || got.SessionID != data.SessionID {
		t.Errorf("сессия: want %+v, got %+v", data, got)
	}

	cookie := cookies[0]
	if cookie.Name != SessionCookieName {
		t.Errorf("Cookie name: want %q, got %q", SessionCookieName, cookie.Name)
	}
	if cookie.Path != "/" {
		t.Errorf("Cookie path: want %q, got %q", "/", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie должен быть HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("Cookie должен быть SameSite=Lax")
	}
}

// TestSessionCookieMissing проверяет, что отсутствие cookie возвращает nil, nil.
func TestSessionCookieMissing(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	req := httptest.NewRequest(http.MethodGet, "/ui/videos", nil)
	data, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ожидалось nil error, получено: %v", err)
	}
	if data != nil {
		t.Error("Ожидалось nil data при отсутствии cookie")
	}
}

// TestClearSessionCookie проверяет очистку session cookie.
func TestClearSessionCookie(t *testing.T) {
	sm, _ := NewSessionManager("test-key", true)

	w := httptest.NewRecorder()
	sm.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie очистки не установлен")
	}

	cookie := cookies[0]
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge: want -1, got %d", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Error("Value должен быть пустым")
	}
	if !cookie.Secure {
		t.Error("Cookie должен быть Secure")
	}
}

func TestSessionCookieMaxAgeFollowsToken(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)
	now := time.Unix(1_700_000_000, 0)
	sm.now = func() time.Time { return now }

	tests := []struct {
		name      string
		expiresAt int64
		want      int
	}{
		{"без срока", 0, SessionCookieMaxAge},
		{"час", now.Add(time.Hour).Unix(), 3600},
		{"неделя", now.Add(7 * 24 * time.Hour).Unix(), SessionCookieMaxAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := sm.SetSessionCookie(w, &SessionData{Token: "t", ExpiresAt: tt.expiresAt}); err != nil {
				t.Fatal(err)
			}
			if got := w.Result().Cookies()[0].MaxAge; got != tt.want {
				t.Errorf("MaxAge = %d, ожидалось %d", got, tt.want)
			}
		})
	}
}

func TestSessionCookieTooLarge(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)
	w := httptest.NewRecorder()

	err := sm.SetSessionCookie(w, &SessionData{Token: strings.Repeat("x", 4000)})
	if !errors.Is(err, ErrCookieTooLarge) {
		t.Fatalf("ожидалась ErrCookieTooLarge, получено %v", err)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie не должен устанавливаться")
	}
}

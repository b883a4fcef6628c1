// Пакет auth — управление сессиями Production Plan UI.
// Шифрование сессий AES-256-GCM, разбор токена входа.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Имя cookie для зашифрованной сессии UI.
const SessionCookieName = "prodplan_session"

// Максимальный возраст cookie сессии (24 часа).
const SessionCookieMaxAge = 24 * 60 * 60

// maxCookieValueLen — предел длины значения cookie. Браузеры молча
// отбрасывают cookie длиннее ~4 КБ вместе с атрибутами.
const maxCookieValueLen = 3800

// ErrCookieTooLarge — зашифрованная сессия не помещается в cookie.
// Обычно означает слишком длинный токен API.
var ErrCookieTooLarge = errors.New("сессия не помещается в cookie")

// SessionData — данные сессии UI, хранящиеся в зашифрованном cookie.
type SessionData struct {
	// SessionID — идентификатор сессии, ключ состояния UI на сервере.
	SessionID string `json:"sid"`
	// Token — bearer-токен, выданный API при входе.
	Token string `json:"token"`
	// Username — имя пользователя, под которым выполнен вход.
	Username string `json:"username"`
	// ExpiresAt — время истечения токена (Unix timestamp), 0 — неизвестно.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// IsExpired проверяет, истёк ли токен.
// Токен без известного срока действия считается действующим до отказа API.
func (s *SessionData) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() >= s.ExpiresAt
}

// SessionManager — менеджер сессий UI.
// Шифрует SessionData в cookie через AES-256-GCM. Имя cookie входит
// в аутентифицированные данные, поэтому значение нельзя перенести в другую cookie.
type SessionManager struct {
	gcm    cipher.AEAD
	secure bool
	now    func() time.Time
}

// NewSessionManager создаёт менеджер сессий.
// key — base64 от 32 байт либо произвольная строка (хешируется SHA-256).
// Пустой key — случайный ключ, сессии не переживают рестарт.
func NewSessionManager(key string, secure bool) (*SessionManager, error) {
	keyBytes, err := sessionKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &SessionManager{gcm: gcm, secure: secure, now: time.Now}, nil
}

func sessionKey(key string) ([]byte, error) {
	if key == "" {
		b := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, b); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == 32 {
		return b, nil
	}
	h := sha256.Sum256([]byte(key))
	return h[:], nil
}

// Encrypt шифрует SessionData в base64url-строку (nonce || ciphertext).
func (sm *SessionManager) Encrypt(data *SessionData) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, sm.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}
	sealed := sm.gcm.Seal(nonce, nonce, plaintext, []byte(SessionCookieName))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt восстанавливает SessionData из значения cookie.
func (sm *SessionManager) Decrypt(encrypted string) (*SessionData, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования cookie: %w", err)
	}
	n := sm.gcm.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	plaintext, err := sm.gcm.Open(nil, sealed[:n], sealed[n:], []byte(SessionCookieName))
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}
	var data SessionData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return &data, nil
}

// SetSessionCookie записывает зашифрованную сессию в ответ.
// Срок жизни cookie не превышает срок действия токена.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, data *SessionData) error {
	value, err := sm.Encrypt(data)
	if err != nil {
		return err
	}
	if len(value) > maxCookieValueLen {
		return fmt.Errorf("%w: %d байт", ErrCookieTooLarge, len(value))
	}
	http.SetCookie(w, sm.cookie(value, sm.maxAge(data)))
	return nil
}

func (sm *SessionManager) maxAge(data *SessionData) int {
	if data.ExpiresAt == 0 {
		return SessionCookieMaxAge
	}
	left := data.ExpiresAt - sm.now().Unix()
	switch {
	case left <= 0:
		return -1
	case left < SessionCookieMaxAge:
		return int(left)
	default:
		return SessionCookieMaxAge
	}
}

// GetSessionFromRequest читает сессию из cookie запроса.
// Отсутствие cookie — nil, nil.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*SessionData, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sm.Decrypt(cookie.Value)
}

// ClearSessionCookie удаляет cookie сессии (выход, отзыв токена).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// auth.go — вход по логину и паролю через API производственного плана и выход.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/ui/auth"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/pages"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// HomePath — страница после входа.
const HomePath = "/ui/videos"

// LoginAPI — получение токена по логину и паролю.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler — обработчики входа и выхода.
type AuthHandler struct {
	api            LoginAPI
	inspector      *auth.TokenInspector
	sessionManager *auth.SessionManager
	store          *state.Store
	uiAuth         *uimiddleware.UIAuth
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	api LoginAPI,
	inspector *auth.TokenInspector,
	sessionManager *auth.SessionManager,
	store *state.Store,
	uiAuth *uimiddleware.UIAuth,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		api:            api,
		inspector:      inspector,
		sessionManager: sessionManager,
		store:          store,
		uiAuth:         uiAuth,
		logger:         logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage — GET /ui/login. ?expired=1 показывает сообщение об
// истёкшей или отозванной сессии.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := pages.LoginData{}
	if r.URL.Query().Get("expired") != "" {
		data.Alert = &pages.Alert{Variant: alertWarning, Message: i18n.T(r.Context(), "login.expired")}
	}
	render(w, r, h.logger, http.StatusOK, pages.Login(data))
}

// HandleLogin — POST /ui/login.
// Получает токен, проверяет его, создаёт состояние сессии и cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.loginFailed(w, r, "", http.StatusBadRequest, "login.required")
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.loginFailed(w, r, username, http.StatusBadRequest, "login.required")
		return
	}

	// 1. Токен от API
	token, err := h.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			h.logger.Info("Неудачная попытка входа", slog.String("username", username))
			h.loginFailed(w, r, username, http.StatusUnauthorized, "login.invalid")
			return
		}
		h.logger.Error("API недоступен при входе", slog.String("error", err.Error()))
		h.loginFailed(w, r, username, http.StatusBadGateway, "login.unavailable")
		return
	}

	// 2. Срок действия и подпись токена
	info, err := h.inspector.Inspect(ctx, token)
	if err != nil {
		h.logger.Warn("Токен не прошёл проверку",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		h.loginFailed(w, r, username, http.StatusUnauthorized, "login.invalid")
		return
	}

	// 3. Состояние сессии и cookie
	sessionID := uuid.NewString()
	h.store.Create(sessionID, token, username)

	data := &auth.SessionData{
		SessionID: sessionID,
		Token:     token,
		Username:  username,
	}
	if !info.ExpiresAt.IsZero() {
		data.ExpiresAt = info.ExpiresAt.Unix()
	}
	if err := h.sessionManager.SetSessionCookie(w, data); err != nil {
		h.store.Remove(sessionID)
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл", slog.String("username", username))
	http.Redirect(w, r, HomePath, http.StatusFound)
}

// HandleLogout — POST /ui/logout. Удаляет состояние сессии и cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessionManager.GetSessionFromRequest(r)
	if session != nil {
		h.logger.Info("Пользователь вышел", slog.String("username", session.Username))
	}
	h.uiAuth.Logout(w, session)
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, username string, status int, key string) {
	render(w, r, h.logger, status, pages.Login(pages.LoginData{
		Username: username,
		Alert:    &pages.Alert{Variant: alertError, Message: i18n.T(r.Context(), key)},
	}))
}

// Пакет middleware — HTTP middleware для Production Plan UI.
// auth.go — проверка UI-сессии (cookie-based), обработка отозванных токенов.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/ui/auth"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

const (
	// ContextKeyUISession — данные UI-сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
	// ContextKeyUIState — серверное состояние UI-сессии.
	ContextKeyUIState contextKey = "ui_state"
)

// Пути страницы входа.
const (
	LoginPath        = "/ui/login"
	LoginExpiredPath = "/ui/login?expired=1"
)

// UIAuth — middleware для проверки аутентификации UI-пользователей.
// Извлекает сессию из зашифрованного cookie, проверяет срок действия и отзыв
// токена, redirect на /ui/login при отсутствии сессии.
type UIAuth struct {
	sessionManager *auth.SessionManager
	store          *state.Store
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(
	sessionManager *auth.SessionManager,
	store *state.Store,
	logger *slog.Logger,
) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		store:          store,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для проверки UI-сессии.
// Применяется к маршрутам /ui/*, кроме /ui/login.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			// 2. Если сессия отсутствует — redirect на login
			if session == nil || session.Token == "" {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			// 3. Проверяем срок действия токена
			if session.IsExpired() {
				ua.logger.Info("Срок действия токена истёк, redirect на login",
					slog.String("username", session.Username),
				)
				ua.Logout(w, session)
				http.Redirect(w, r, LoginExpiredPath, http.StatusFound)
				return
			}

			// 4. Состояние сессии. После рестарта процесса восстанавливается из cookie.
			st, ok := ua.store.Get(session.SessionID)
			if !ok {
				st = ua.store.Create(session.SessionID, session.Token, session.Username)
				ua.logger.Debug("Состояние сессии восстановлено из cookie",
					slog.String("username", session.Username),
				)
			}

			// 5. Токен отозван фоновой проверкой или ответом 401
			if st.Revoked() {
				ua.logger.Info("Токен отозван, redirect на login",
					slog.String("username", session.Username),
				)
				ua.Logout(w, session)
				http.Redirect(w, r, LoginExpiredPath, http.StatusFound)
				return
			}

			// 6. Помещаем сессию, состояние и токен в контекст
			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			ctx = context.WithValue(ctx, ContextKeyUIState, st)
			ctx = apiclient.WithToken(ctx, session.Token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logout удаляет состояние сессии и очищает cookie.
func (ua *UIAuth) Logout(w http.ResponseWriter, session *auth.SessionData) {
	if session != nil {
		ua.store.Remove(session.SessionID)
	}
	ua.sessionManager.ClearSessionCookie(w)
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (не прошёл через UIAuth middleware).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

// StateFromContext извлекает состояние UI-сессии из контекста запроса.
func StateFromContext(ctx context.Context) *state.Session {
	st, ok := ctx.Value(ContextKeyUIState).(*state.Session)
	if !ok {
		return nil
	}
	return st
}

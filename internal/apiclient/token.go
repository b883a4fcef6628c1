package apiclient

import (
	"context"
	"errors"
)

// ErrNoToken — в контексте запроса нет токена.
var ErrNoToken = errors.New("токен не задан")

type contextKey string

const contextKeyToken contextKey = "api_token"

// WithToken помещает токен текущего пользователя в контекст.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// ContextToken — TokenProvider, читающий токен из контекста (UI-сессии).
func ContextToken(ctx context.Context) (string, error) {
	token, ok := ctx.Value(contextKeyToken).(string)
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// StaticToken — TokenProvider с фиксированным токеном (CLI).
func StaticToken(token string) TokenProvider {
	return func(ctx context.Context) (string, error) {
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	}
}

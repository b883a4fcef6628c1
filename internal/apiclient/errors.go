package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized — API отклонил токен (401). Сессия должна быть отозвана.
	ErrUnauthorized = errors.New("токен недействителен")
	// ErrNotFound — запись не найдена (404).
	ErrNotFound = errors.New("запись не найдена")
	// ErrInvalidCredentials — неверный логин или пароль.
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
)

// StatusError — неуспешный HTTP-ответ API.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API %s вернул статус %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("API %s вернул статус %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap отображает статусы 401 и 404 в сигнальные ошибки.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

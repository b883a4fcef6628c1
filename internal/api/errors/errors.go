// Пакет errors — JSON-ответы с ошибками служебных эндпоинтов Production Plan UI.
// Формат: {"error": {"code": "...", "message": "..."}}.
// HTML-страницы UI сообщают об ошибках сами; этот пакет используют health,
// ограничение частоты запросов и прочие не-HTML ответы.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeAPIUnavailable  = "API_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// RateLimited — 429 превышен лимит запросов.
func RateLimited(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

// APIUnavailable — 503 API производственного плана недоступен.
func APIUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, CodeAPIUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

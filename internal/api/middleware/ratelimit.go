// ratelimit.go — ограничение частоты запросов по IP (скользящее окно httprate).
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	apierrors "github.com/bigkaa/prodplan/internal/api/errors"
)

// RateLimit ограничивает число запросов с одного IP за окно window.
// При превышении отвечает 429 с заголовком Retry-After.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			apierrors.RateLimited(w, "слишком много запросов, повторите позже")
		}),
	)
}

// LoginRateLimit — лимит попыток входа в минуту.
func LoginRateLimit(perMinute int) func(http.Handler) http.Handler {
	return RateLimit(perMinute, time.Minute)
}

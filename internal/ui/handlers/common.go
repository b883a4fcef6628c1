// Пакет handlers — HTTP-обработчики Production Plan UI.
// common.go — рендеринг, flash-сообщения после redirect, отображение ошибок
// сервиса в сообщения и завершение сессии при 401.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/service"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/pages"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// Варианты сообщений.
const (
	alertSuccess = "success"
	alertError   = "error"
	alertWarning = "warning"
)

// render пишет страницу с указанным статусом.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// flashMessages — сообщения, которые можно передать через ?msg= после redirect.
var flashMessages = map[string]string{
	"created":     alertSuccess,
	"updated":     alertSuccess,
	"no_changes":  alertWarning,
	"deleted":     alertSuccess,
	"tests_saved": alertSuccess,
	"bulk_done":   alertSuccess,
	"bulk_empty":  alertWarning,
	"not_found":   alertError,
	"api_error":   alertError,
}

// withFlash добавляет к адресу параметр msg (и n для счётчика).
func withFlash(target, msg string, n int) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	target += sep + "msg=" + msg
	if n > 0 {
		target += "&n=" + strconv.Itoa(n)
	}
	return target
}

// flashAlert строит сообщение из параметров запроса. Неизвестные msg игнорируются.
func flashAlert(r *http.Request) *pages.Alert {
	msg := r.URL.Query().Get("msg")
	variant, ok := flashMessages[msg]
	if !ok {
		return nil
	}
	ctx := r.Context()
	if msg == "bulk_done" {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		return &pages.Alert{Variant: variant, Message: i18n.Tf(ctx, "alert.bulk_done", n)}
	}
	return &pages.Alert{Variant: variant, Message: i18n.T(ctx, "alert."+msg)}
}

// errorAlert переводит ошибку сервиса в сообщение для пользователя.
func errorAlert(ctx context.Context, err error) *pages.Alert {
	var (
		resErr   *diff.ResolutionError
		rowErr   *retention.RowError
		batchErr *service.BatchError
	)
	switch {
	case errors.As(err, &resErr):
		return &pages.Alert{Variant: alertError, Message: i18n.Tf(ctx, "alert.resolution", i18n.T(ctx, "col."+resErr.Field), resErr.Name)}
	case errors.As(err, &batchErr):
		ids := make([]string, 0, len(batchErr.Failed))
		for _, id := range batchErr.FailedIDs() {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		return &pages.Alert{Variant: alertError, Message: i18n.Tf(ctx, "alert.bulk_partial", len(batchErr.Failed), batchErr.Total, strings.Join(ids, ", "))}
	case errors.Is(err, service.ErrNoChanges):
		return &pages.Alert{Variant: alertWarning, Message: i18n.T(ctx, "alert.bulk_no_values")}
	case errors.As(err, &rowErr), errors.Is(err, service.ErrValidation):
		return &pages.Alert{Variant: alertError, Message: i18n.Tf(ctx, "alert.validation", err.Error())}
	case errors.Is(err, service.ErrNotFound), errors.Is(err, apiclient.ErrNotFound):
		return &pages.Alert{Variant: alertError, Message: i18n.T(ctx, "alert.not_found")}
	default:
		return &pages.Alert{Variant: alertError, Message: i18n.T(ctx, "alert.api_error")}
	}
}

// errorStatus — HTTP-статус страницы с ошибкой.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, diff.ErrResolution),
		errors.Is(err, retention.ErrInvalidRows),
		errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound), errors.Is(err, apiclient.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// sessionEnder завершает сессию, если API отклонил токен.
type sessionEnder struct {
	uiAuth *uimiddleware.UIAuth
	logger *slog.Logger
}

// endIfUnauthorized выполняет logout и redirect на страницу входа при 401.
// Возвращает true, если ответ уже записан.
func (e sessionEnder) endIfUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	session := uimiddleware.SessionFromContext(r.Context())
	if session != nil {
		e.logger.Info("API отклонил токен, сессия завершена",
			slog.String("username", session.Username),
		)
	}
	e.uiAuth.Logout(w, session)
	http.Redirect(w, r, uimiddleware.LoginExpiredPath, http.StatusFound)
	return true
}

// current возвращает сессию и состояние из контекста; при отсутствии
// выполняет redirect на страницу входа.
func current(w http.ResponseWriter, r *http.Request) (string, *state.Session, bool) {
	session := uimiddleware.SessionFromContext(r.Context())
	st := uimiddleware.StateFromContext(r.Context())
	if session == nil || st == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return "", nil, false
	}
	return session.Username, st, true
}

// listURL — адрес последней показанной страницы списка.
func listURL(st *state.Session) string {
	st.Lock()
	defer st.Unlock()
	return pages.ListHref(st.PageRequest.Page, st.PageRequest.Sort)
}

// replaceRecord обновляет запись в снимке страницы после успешного PATCH.
func replaceRecord(st *state.Session, record *model.VideoRecord) {
	if record == nil || record.ID == 0 {
		return
	}
	st.Lock()
	defer st.Unlock()
	if st.Page == nil {
		return
	}
	if old, ok := st.Page.Find(record.ID); ok {
		*old = *record
	}
}

// formValue возвращает значение поля формы и признак его наличия.
func formValue(r *http.Request, name string) (string, bool) {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseID разбирает идентификатор записи из URL.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// retention.go — отчёт по удержанию: лучшая версия каждой записи текущей
// страницы в момент ранжирования. При непустом выборе показываются только
// выбранные записи.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/selection"
	"github.com/bigkaa/prodplan/internal/service"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/pages"
)

// RetentionHandler — обработчик отчёта по удержанию.
type RetentionHandler struct {
	videos   *service.VideoService
	memo     *retention.Memo
	key      model.RetentionTime
	pageSize int
	sessionEnder
	logger *slog.Logger
}

// NewRetentionHandler создаёт новый RetentionHandler.
// key — момент ранжирования по умолчанию.
func NewRetentionHandler(
	videos *service.VideoService,
	memo *retention.Memo,
	key model.RetentionTime,
	pageSize int,
	uiAuth *uimiddleware.UIAuth,
	logger *slog.Logger,
) *RetentionHandler {
	logger = logger.With(slog.String("component", "ui.retention"))
	return &RetentionHandler{
		videos:       videos,
		memo:         memo,
		key:          key,
		pageSize:     pageSize,
		sessionEnder: sessionEnder{uiAuth: uiAuth, logger: logger},
		logger:       logger,
	}
}

// HandleReport обрабатывает GET /ui/retention?rt=30s.
// Перечитывает последнюю показанную страницу; сводные таблицы
// неизменённого набора берутся из кэша.
func (h *RetentionHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	key := h.key
	if rt, valid := model.ParseRetentionTime(r.URL.Query().Get("rt")); valid {
		key = rt
	}
	data := pages.RetentionData{Username: username, Report: retention.Report{Key: key}}

	// Отчёт строится по странице, к которой привязан выбор.
	req := model.PageRequest{Size: h.pageSize}
	st.Lock()
	if key, bound := st.Selection.Page(); bound {
		req = model.PageRequest{Page: key.Page, Size: key.Size, Sort: key.Sort}
	}
	st.Unlock()

	page, err := h.videos.List(ctx, req)
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки записей для отчёта", slog.String("error", err.Error()))
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.RetentionReport(data))
		return
	}

	st.Lock()
	st.Page = page
	st.PageRequest = req
	st.Selection.Reconcile(selection.PageKey{Page: req.Page, Size: req.Size, Sort: req.Sort}, page.IDs())
	records := page.Content
	if st.Selection.Len() > 0 {
		records = make([]model.VideoRecord, 0, st.Selection.Len())
		for _, rec := range page.Content {
			if st.Selection.Contains(rec.ID) {
				records = append(records, rec)
			}
		}
		data.SelectedOnly = true
	}
	st.Unlock()

	data.Report = retention.BuildReport(h.memo.Entries(records), key)
	render(w, r, h.logger, http.StatusOK, pages.RetentionReport(data))
}

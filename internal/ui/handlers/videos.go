// videos.go — список записей производственного плана, создание,
// редактирование и удаление. Список согласует множество выбранных записей
// с загруженной страницей и сохраняет её снимок в состоянии сессии.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/selection"
	"github.com/bigkaa/prodplan/internal/service"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/pages"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// VideosHandler — обработчики страниц записей, выбора, массового
// редактирования и редактора измерений.
type VideosHandler struct {
	videos       *service.VideoService
	pageSize     int
	retentionKey model.RetentionTime
	sessionEnder
	logger *slog.Logger
}

// NewVideosHandler создаёт новый VideosHandler.
func NewVideosHandler(
	videos *service.VideoService,
	uiAuth *uimiddleware.UIAuth,
	pageSize int,
	retentionKey model.RetentionTime,
	logger *slog.Logger,
) *VideosHandler {
	logger = logger.With(slog.String("component", "ui.videos"))
	return &VideosHandler{
		videos:       videos,
		pageSize:     pageSize,
		retentionKey: retentionKey,
		sessionEnder: sessionEnder{uiAuth: uiAuth, logger: logger},
		logger:       logger,
	}
}

// HandleList обрабатывает GET /ui/videos?page=N&sort=field,dir.
func (h *VideosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	req := model.PageRequest{Size: h.pageSize, Sort: r.URL.Query().Get("sort")}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		req.Page = p
	}
	if !model.ValidSort(req.Sort) {
		req.Sort = ""
	}

	data := pages.VideoListData{
		Username: username,
		Page:     req.Page,
		Size:     req.Size,
		Sort:     req.Sort,
		Alert:    flashAlert(r),
	}

	page, err := h.videos.List(ctx, req)
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки списка", slog.String("error", err.Error()))
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.VideoList(data))
		return
	}

	st.Lock()
	st.Page = page
	st.PageRequest = req
	if st.Selection.Reconcile(selection.PageKey{Page: req.Page, Size: req.Size, Sort: req.Sort}, page.IDs()) {
		h.logger.Debug("Выбор согласован со страницей",
			slog.String("username", username),
			slog.Int("selected", st.Selection.Len()),
		)
	}
	data.Rows = videoRows(page, st)
	data.SelectedCount = st.Selection.Len()
	st.Unlock()

	data.TotalPages = page.Page.TotalPages
	data.TotalElements = page.Page.TotalElements
	render(w, r, h.logger, http.StatusOK, pages.VideoList(data))
}

// videoRows строит строки таблицы. Вызывается под блокировкой состояния:
// палитра назначает цвета монтажёрам в порядке первого появления.
func videoRows(page *model.VideoPage, st *state.Session) []pages.VideoRow {
	rows := make([]pages.VideoRow, 0, len(page.Content))
	for i := range page.Content {
		rec := &page.Content[i]
		releases := make([]string, 0, len(rec.Releases))
		for _, rel := range rec.SortedReleases() {
			releases = append(releases, rel.ReleaseDateTime)
		}
		rows = append(rows, pages.VideoRow{
			ID:              rec.ID,
			CompilationName: rec.CompilationName,
			FilmingStart:    rec.FilmingStart,
			EditStart:       rec.EditStart,
			Stage:           string(rec.Stage),
			Status:          string(rec.Status),
			Priority:        string(rec.Priority),
			Director:        rec.DirectorName(),
			Editor:          rec.EditorName(),
			Releases:        releases,
			ReferenceLink:   rec.ReferenceLink,
			Comment:         rec.Comment,
			ColorClass:      st.Palette.Class(rec.EditorName()),
			Selected:        st.Selection.Contains(rec.ID),
		})
	}
	return rows
}

// HandleNew обрабатывает GET /ui/videos/new — пустая форма создания.
func (h *VideosHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	username, _, ok := current(w, r)
	if !ok {
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.VideoForm(createForm(username, diff.CreateValues{})))
}

// HandleCreate обрабатывает POST /ui/videos.
func (h *VideosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	values, err := parseCreateForm(r)
	if err == nil {
		_, err = h.videos.Create(ctx, values)
	}
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Warn("Запись не создана", slog.String("error", err.Error()))
		data := createForm(username, values)
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.VideoForm(data))
		return
	}

	http.Redirect(w, r, withFlash(listURL(st), "created", 0), http.StatusSeeOther)
}

// HandleEdit обрабатывает GET /ui/videos/{id}/edit.
func (h *VideosHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	record, err := h.lookup(ctx, st, chi.URLParam(r, "id"))
	if err != nil {
		h.redirectOnLookupError(w, r, st, err)
		return
	}
	dir, err := h.videos.Directory(ctx)
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки справочников", slog.String("error", err.Error()))
		data := editForm(username, record, diff.Directory{})
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.VideoForm(data))
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.VideoForm(editForm(username, record, dir)))
}

// HandleUpdate обрабатывает POST /ui/videos/{id}.
// Отправляет только изменённые поля; без изменений запрос не выполняется.
func (h *VideosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	original, err := h.lookup(ctx, st, chi.URLParam(r, "id"))
	if err != nil {
		h.redirectOnLookupError(w, r, st, err)
		return
	}

	values, err := parseEditForm(r)
	var updated *model.VideoRecord
	if err == nil {
		updated, err = h.videos.Update(ctx, original, values)
	}
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Warn("Запись не обновлена",
			slog.Int64("id", original.ID),
			slog.String("error", err.Error()),
		)
		dir, _ := h.videos.Directory(ctx)
		data := editForm(username, original, dir)
		fillEditForm(&data, r)
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.VideoForm(data))
		return
	}

	if updated == original {
		http.Redirect(w, r, withFlash(listURL(st), "no_changes", 0), http.StatusSeeOther)
		return
	}
	replaceRecord(st, updated)
	http.Redirect(w, r, withFlash(listURL(st), "updated", 0), http.StatusSeeOther)
}

// HandleDelete обрабатывает POST /ui/videos/{id}/delete.
func (h *VideosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, st, ok := current(w, r)
	if !ok {
		return
	}
	id, valid := parseID(chi.URLParam(r, "id"))
	if !valid {
		http.Redirect(w, r, withFlash(listURL(st), "not_found", 0), http.StatusSeeOther)
		return
	}

	if err := h.videos.Delete(r.Context(), id); err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Warn("Запись не удалена", slog.Int64("id", id), slog.String("error", err.Error()))
		msg := "api_error"
		if errorStatus(err) == http.StatusNotFound {
			msg = "not_found"
		}
		http.Redirect(w, r, withFlash(listURL(st), msg, 0), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, withFlash(listURL(st), "deleted", 0), http.StatusSeeOther)
}

// lookup ищет запись в снимке текущей страницы, затем в API.
// Возвращает копию, не связанную со снимком.
func (h *VideosHandler) lookup(ctx context.Context, st *state.Session, rawID string) (*model.VideoRecord, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, service.ErrNotFound
	}

	st.Lock()
	if st.Page != nil {
		if rec, found := st.Page.Find(id); found {
			cp := *rec
			st.Unlock()
			return &cp, nil
		}
	}
	st.Unlock()

	return h.videos.Find(ctx, id, h.pageSize)
}

func (h *VideosHandler) redirectOnLookupError(w http.ResponseWriter, r *http.Request, st *state.Session, err error) {
	if h.endIfUnauthorized(w, r, err) {
		return
	}
	msg := "api_error"
	if errorStatus(err) == http.StatusNotFound {
		msg = "not_found"
	}
	http.Redirect(w, r, withFlash(listURL(st), msg, 0), http.StatusSeeOther)
}

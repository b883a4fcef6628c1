// selection.go — выбор записей на текущей странице и массовое редактирование.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/ui/pages"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// HandleToggle обрабатывает POST /ui/selection/toggle (поле id).
// Переключаются только записи, видимые на текущей странице.
func (h *VideosHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	_, st, ok := current(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка разбора формы", http.StatusBadRequest)
		return
	}
	id, valid := parseID(r.PostForm.Get("id"))
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}

	st.Lock()
	if st.Page != nil {
		if _, visible := st.Page.Find(id); visible {
			st.Selection.Toggle(id)
		}
	}
	st.Unlock()

	http.Redirect(w, r, listURL(st), http.StatusSeeOther)
}

// HandleClear обрабатывает POST /ui/selection/clear — клик вне таблицы
// или кнопка «снять выбор». Запрос из selection.js получает 204.
func (h *VideosHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	_, st, ok := current(w, r)
	if !ok {
		return
	}
	st.Lock()
	st.Selection.Clear()
	st.Unlock()

	if r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, listURL(st), http.StatusSeeOther)
}

// HandleBulkForm обрабатывает GET /ui/bulk.
func (h *VideosHandler) HandleBulkForm(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	count := selectedCount(st)
	if count == 0 {
		http.Redirect(w, r, withFlash(listURL(st), "bulk_empty", 0), http.StatusSeeOther)
		return
	}

	data := bulkForm(username, count)
	dir, err := h.videos.Directory(ctx)
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.BulkForm(data))
		return
	}
	data.Directors = pages.PersonOptions(dir.Directors, "")
	data.Editors = pages.PersonOptions(dir.Editors, "")
	render(w, r, h.logger, http.StatusOK, pages.BulkForm(data))
}

// HandleBulkApply обрабатывает POST /ui/bulk.
// Изменения применяются к снимку выбора; после успеха выбор очищается,
// после частичного отказа сохраняется.
func (h *VideosHandler) HandleBulkApply(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	st.Lock()
	ids := st.Selection.IDs()
	st.Unlock()
	if len(ids) == 0 {
		http.Redirect(w, r, withFlash(listURL(st), "bulk_empty", 0), http.StatusSeeOther)
		return
	}

	values, err := parseBulkForm(r)
	if err == nil {
		err = h.videos.BulkUpdate(ctx, ids, values)
	}
	if err != nil {
		if h.endIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Warn("Массовое обновление не выполнено",
			slog.String("username", username),
			slog.Int("selected", len(ids)),
			slog.String("error", err.Error()),
		)
		data := bulkForm(username, len(ids))
		if dir, dirErr := h.videos.Directory(ctx); dirErr == nil {
			data.Directors = pages.PersonOptions(dir.Directors, "")
			data.Editors = pages.PersonOptions(dir.Editors, "")
		}
		data.Alert = errorAlert(ctx, err)
		render(w, r, h.logger, errorStatus(err), pages.BulkForm(data))
		return
	}

	st.Lock()
	st.Selection.Clear()
	st.Unlock()
	http.Redirect(w, r, withFlash(listURL(st), "bulk_done", len(ids)), http.StatusSeeOther)
}

func selectedCount(st *state.Session) int {
	st.Lock()
	defer st.Unlock()
	return st.Selection.Len()
}

func bulkForm(username string, count int) pages.BulkFormData {
	return pages.BulkFormData{
		Username:   username,
		Count:      count,
		Stages:     pages.EnumOptions(model.Stages, ""),
		Statuses:   pages.EnumOptions(model.Statuses, ""),
		Priorities: pages.EnumOptions(model.Priorities, ""),
	}
}

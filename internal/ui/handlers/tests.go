// tests.go — редактор измерений удержания записи.
// Строки редактора передаются формой целиком: version, time, value
// повторяются по числу строк; кнопка задаёт action (add, save, delete:N).
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/ui/pages"
)

// HandleTests обрабатывает GET /ui/videos/{id}/tests.
func (h *VideosHandler) HandleTests(w http.ResponseWriter, r *http.Request) {
	username, st, ok := current(w, r)
	if !ok {
		return
	}
	record, err := h.lookup(r.Context(), st, chi.URLParam(r, "id"))
	if err != nil {
		h.redirectOnLookupError(w, r, st, err)
		return
	}

	data := h.testsData(username, record, retention.RowsFromTests(record.Tests))
	data.Alert = flashAlert(r)
	render(w, r, h.logger, http.StatusOK, pages.TestsEditor(data))
}

// HandleTestsAction обрабатывает POST /ui/videos/{id}/tests.
func (h *VideosHandler) HandleTestsAction(w http.ResponseWriter, r *http.Request) {
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
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка разбора формы", http.StatusBadRequest)
		return
	}
	rows := parseRows(r)

	action := r.PostForm.Get("action")
	switch {
	case action == "add":
		rows, _ = retention.AddRow(rows)
	case strings.HasPrefix(action, "delete:"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "delete:")); err == nil {
			rows = retention.DeleteRow(rows, i)
		}
	case action == "save":
		saved, err := h.videos.SaveTests(ctx, record.ID, rows)
		if err != nil {
			if h.endIfUnauthorized(w, r, err) {
				return
			}
			h.logger.Warn("Измерения не сохранены",
				slog.Int64("id", record.ID),
				slog.String("error", err.Error()),
			)
			data := h.testsData(username, record, rows)
			data.Alert = errorAlert(ctx, err)
			render(w, r, h.logger, errorStatus(err), pages.TestsEditor(data))
			return
		}
		if saved == nil || saved.ID == 0 {
			// API не вернул тело: в снимок попадают отправленные измерения.
			tests, _ := retention.ValidateRows(rows)
			cp := *record
			cp.Tests = tests
			saved = &cp
		}
		replaceRecord(st, saved)
		http.Redirect(w, r, withFlash("/ui/videos/"+strconv.FormatInt(record.ID, 10)+"/tests", "tests_saved", 0), http.StatusSeeOther)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.TestsEditor(h.testsData(username, record, rows)))
}

func (h *VideosHandler) testsData(username string, record *model.VideoRecord, rows []retention.Row) pages.TestsData {
	return pages.TestsData{
		Username:        username,
		ID:              record.ID,
		CompilationName: record.CompilationName,
		Rows:            rows,
		CanAdd:          retention.CanAdd(rows),
		Grid:            retention.ComputeGrid(record),
		Key:             h.retentionKey,
	}
}

// parseRows собирает строки редактора из параллельных полей формы.
func parseRows(r *http.Request) []retention.Row {
	versions := r.PostForm["version"]
	times := r.PostForm["time"]
	values := r.PostForm["value"]

	n := min(len(versions), len(times), len(values))
	if n == 0 {
		return retention.DefaultRows()
	}
	rows := make([]retention.Row, 0, n)
	for i := range n {
		rows = append(rows, retention.Row{
			Version:       model.Version(strings.TrimSpace(versions[i])),
			RetentionTime: model.RetentionTime(strings.TrimSpace(times[i])),
			Value:         values[i],
		})
	}
	return rows
}

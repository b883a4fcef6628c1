package pages

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// VideoRow — строка таблицы производственного плана.
type VideoRow struct {
	ID              int64
	CompilationName string
	FilmingStart    string
	EditStart       string
	Stage           string
	Status          string
	Priority        string
	Director        string
	Editor          string
	Releases        []string
	ReferenceLink   string
	Comment         string
	// ColorClass — CSS-класс цвета монтажёра.
	ColorClass string
	Selected   bool
}

// VideoListData — данные страницы списка.
type VideoListData struct {
	Username      string
	Rows          []VideoRow
	Page          int
	Size          int
	Sort          string
	TotalPages    int
	TotalElements int64
	SelectedCount int
	Alert         *Alert
}

// sortColumns — колонки с сортировкой: поле API и ключ заголовка.
var sortColumns = []struct{ field, key string }{
	{"compilationName", "col.name"},
	{"filmingStart", "col.filming_start"},
	{"editStart", "col.edit_start"},
	{"stage", "col.stage"},
	{"status", "col.status"},
	{"priority", "col.priority"},
}

// ListHref возвращает адрес страницы списка.
func ListHref(page int, sort string) string {
	q := url.Values{}
	q.Set("page", itoa(page))
	if sort != "" {
		q.Set("sort", sort)
	}
	return "/ui/videos?" + q.Encode()
}

// nextSort переключает направление для текущего поля, для другого поля — asc.
func nextSort(field, current string) string {
	f, dir, _ := strings.Cut(current, ",")
	if f == field && dir != "desc" {
		return field + ",desc"
	}
	return field + ",asc"
}

// sortMark — индикатор направления сортировки в заголовке.
func sortMark(field, current string) string {
	f, dir, _ := strings.Cut(current, ",")
	switch {
	case f != field:
		return ""
	case dir == "desc":
		return " ▼"
	default:
		return " ▲"
	}
}

// VideoList — страница списка записей с выбором, сортировкой и пагинацией.
func VideoList(data VideoListData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<section class="card" data-selection-zone data-selection-count="`, itoa(data.SelectedCount), `">`)
		h.raw(`<div class="toolbar"><h1>`)
		h.t("videos.title")
		h.raw(`</h1><a class="button primary" href="/ui/videos/new">`)
		h.t("videos.add")
		h.raw(`</a>`)
		if data.SelectedCount > 0 {
			h.raw(`<span class="selected-count">`)
			h.tf("videos.selected", data.SelectedCount)
			h.raw(`</span><a class="button" href="/ui/bulk">`)
			h.t("videos.bulk_edit")
			h.raw(`</a><form method="post" action="/ui/selection/clear" class="inline"><button type="submit">`)
			h.t("videos.clear_selection")
			h.raw(`</button></form>`)
		}
		h.raw(`</div>`)
		h.alert(data.Alert)

		if len(data.Rows) == 0 {
			h.raw(`<p class="empty">`)
			h.t("videos.empty")
			h.raw(`</p>`)
		} else {
			h.videoTable(data)
		}

		h.raw(`<nav class="pagination">`)
		if data.Page > 0 {
			h.raw(`<a href="`, href(ListHref(data.Page-1, data.Sort)), `">`)
			h.t("videos.prev")
			h.raw(`</a>`)
		}
		h.raw(`<span>`)
		h.tf("videos.page", data.Page+1, max(data.TotalPages, 1), data.TotalElements)
		h.raw(`</span>`)
		if data.Page+1 < data.TotalPages {
			h.raw(`<a href="`, href(ListHref(data.Page+1, data.Sort)), `">`)
			h.t("videos.next")
			h.raw(`</a>`)
		}
		h.raw(`</nav></section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, "videos.title"), data.Username, body).Render(ctx, w)
	})
}

func (h *html) videoTable(data VideoListData) {
	h.raw(`<table class="videos"><thead><tr><th></th>`)
	for _, c := range sortColumns {
		h.raw(`<th><a href="`, href(ListHref(0, nextSort(c.field, data.Sort))), `">`)
		h.t(c.key)
		h.text(sortMark(c.field, data.Sort))
		h.raw(`</a></th>`)
	}
	for _, key := range []string{"col.director", "col.editor", "col.releases", "col.reference", "col.comment"} {
		h.raw(`<th>`)
		h.t(key)
		h.raw(`</th>`)
	}
	h.raw(`<th></th></tr></thead><tbody>`)

	for _, row := range data.Rows {
		class := row.ColorClass
		if row.Selected {
			class += " selected"
		}
		id := id64(row.ID)
		h.raw(`<tr class="`, attr(class), `" data-id="`, id, `"><td>`)
		h.raw(`<form method="post" action="/ui/selection/toggle"><input type="hidden" name="id" value="`, id, `">`)
		h.raw(`<input type="checkbox" data-select-id="`, id, `" aria-label="`, attr(i18n.T(h.ctx, "col.select")), `"`)
		if row.Selected {
			h.raw(` checked`)
		}
		h.raw(`></form></td>`)

		for _, cell := range []string{row.CompilationName, row.FilmingStart, row.EditStart, row.Stage, row.Status, row.Priority, row.Director, row.Editor} {
			h.raw(`<td>`)
			h.text(cell)
			h.raw(`</td>`)
		}
		h.raw(`<td>`)
		h.text(strings.Join(row.Releases, ", "))
		h.raw(`</td><td>`)
		if row.ReferenceLink != "" {
			h.raw(`<a href="`, href(row.ReferenceLink), `" target="_blank" rel="noopener noreferrer">`)
			h.text(row.ReferenceLink)
			h.raw(`</a>`)
		}
		h.raw(`</td><td>`)
		h.text(row.Comment)
		h.raw(`</td><td class="actions">`)
		h.raw(`<a href="/ui/videos/`, id, `/edit">`)
		h.t("videos.edit")
		h.raw(`</a><a href="/ui/videos/`, id, `/tests">`)
		h.t("videos.tests")
		h.raw(`</a><form method="post" action="/ui/videos/`, id, `/delete" class="inline" data-confirm="`,
			attr(i18n.T(h.ctx, "videos.delete_confirm")), `"><button type="submit" class="danger">`)
		h.t("videos.delete")
		h.raw(`</button></form></td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// TestsData — данные редактора измерений удержания.
type TestsData struct {
	Username        string
	ID              int64
	CompilationName string
	Rows            []retention.Row
	CanAdd          bool
	// Grid — сводная таблица сохранённых измерений записи.
	Grid  retention.Grid
	Key   model.RetentionTime
	Alert *Alert
}

// TestsEditor — редактор измерений и сводная таблица записи.
// Кнопки формы передают action: add, save или delete:N.
func TestsEditor(data TestsData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		id := id64(data.ID)
		h.raw(`<section class="card"><h1>`)
		h.tf("tests.title", data.CompilationName)
		h.raw(`</h1>`)
		h.alert(data.Alert)

		// Первая кнопка формы — действие по Enter.
		h.raw(`<form method="post" action="/ui/videos/`, id, `/tests">`)
		h.raw(`<button type="submit" name="action" value="save" hidden></button>`)
		h.raw(`<table class="tests"><thead><tr><th>`)
		h.t("tests.version")
		h.raw(`</th><th>`)
		h.t("tests.time")
		h.raw(`</th><th>`)
		h.t("tests.value")
		h.raw(`</th><th></th></tr></thead><tbody>`)
		for i, row := range data.Rows {
			h.raw(`<tr><td><select name="version">`)
			for _, v := range model.Versions {
				h.option(string(v), v == row.Version)
			}
			h.raw(`</select></td><td><select name="time">`)
			for _, t := range model.RetentionTimes {
				h.option(string(t), t == row.RetentionTime)
			}
			h.raw(`</select></td><td><input type="text" inputmode="decimal" name="value" value="`, attr(row.Value), `"></td>`)
			h.raw(`<td><button type="submit" name="action" value="delete:`, itoa(i), `" class="danger">`)
			h.t("tests.delete")
			h.raw(`</button></td></tr>`)
		}
		h.raw(`</tbody></table><div class="form-actions">`)
		h.raw(`<button type="submit" name="action" value="add"`)
		if !data.CanAdd {
			h.raw(` disabled`)
		}
		h.raw(`>`)
		h.t("tests.add")
		h.raw(`</button><button type="submit" name="action" value="save" class="primary">`)
		h.t("tests.save")
		h.raw(`</button><a class="button" href="/ui/videos">`)
		h.t("form.cancel")
		h.raw(`</a></div></form>`)

		h.retentionGrid(data.Grid, data.Key)
		h.raw(`</section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.Tf(ctx, "tests.title", data.CompilationName), data.Username, body).Render(ctx, w)
	})
}

func (h *html) option(value string, selected bool) {
	h.raw(`<option value="`, attr(value), `"`)
	if selected {
		h.raw(` selected`)
	}
	h.raw(`>`)
	h.text(value)
	h.raw(`</option>`)
}

// retentionGrid пишет таблицу версия × момент и лучшую версию по key.
func (h *html) retentionGrid(g retention.Grid, key model.RetentionTime) {
	winner, ok := retention.BestVersion(g, key)

	h.raw(`<h2>`)
	h.t("tests.grid")
	h.raw(`</h2><table class="grid"><thead><tr><th></th>`)
	for _, t := range model.RetentionTimes {
		h.raw(`<th>`)
		h.text(string(t))
		h.raw(`</th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for _, v := range model.Versions {
		h.raw(`<tr><th>`)
		h.text(string(v))
		h.raw(`</th>`)
		for _, t := range model.RetentionTimes {
			c, _ := g.Cell(v, t)
			if ok && v == winner.Version && t == key {
				h.raw(`<td class="winner">`)
			} else {
				h.raw(`<td>`)
			}
			if c.Present {
				h.text(c.Value.String())
			}
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table><p class="best">`)
	if ok {
		h.tf("tests.best", string(key), string(winner.Version))
	} else {
		h.tf("tests.no_best", string(key))
	}
	h.raw(`</p>`)
}

package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// RetentionData — данные отчёта по удержанию.
type RetentionData struct {
	Username string
	Report   retention.Report
	// SelectedOnly — отчёт ограничен выбранными записями.
	SelectedOnly bool
	Alert        *Alert
}

// RetentionReport — таблица «компиляция × версия» в момент ранжирования
// с выделением лучшей версии.
func RetentionReport(data RetentionData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		key := data.Report.Key

		h.raw(`<section class="card"><div class="toolbar"><h1>`)
		h.t("retention.title")
		h.raw(`</h1><form method="get" action="/ui/retention" class="inline"><label>`)
		h.t("retention.key")
		h.raw(` <select name="rt">`)
		for _, t := range model.RetentionTimes {
			h.option(string(t), t == key)
		}
		h.raw(`</select></label><button type="submit">`)
		h.t("retention.apply")
		h.raw(`</button></form></div>`)
		h.alert(data.Alert)
		if data.SelectedOnly {
			h.raw(`<p class="hint">`)
			h.t("retention.selected_only")
			h.raw(`</p>`)
		}

		h.raw(`<table class="retention"><thead><tr><th>`)
		h.t("retention.compilation")
		h.raw(`</th>`)
		for _, v := range model.Versions {
			h.raw(`<th>`)
			h.text(string(v))
			h.raw(`</th>`)
		}
		h.raw(`<th>`)
		h.t("retention.best")
		h.raw(`</th></tr></thead><tbody>`)

		for _, row := range data.Report.Rows {
			h.raw(`<tr><td><a href="/ui/videos/`, id64(row.ID), `/tests">`)
			h.text(row.CompilationName)
			h.raw(`</a></td>`)
			for _, v := range model.Versions {
				c, _ := row.Grid.Cell(v, key)
				if row.HasWinner && v == row.Winner.Version {
					h.raw(`<td class="winner">`)
				} else {
					h.raw(`<td>`)
				}
				if c.Present {
					h.text(c.Value.String())
				}
				h.raw(`</td>`)
			}
			h.raw(`<td>`)
			if row.HasWinner {
				h.text(string(row.Winner.Version))
			} else {
				h.t("retention.none")
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, "retention.title"), data.Username, body).Render(ctx, w)
	})
}

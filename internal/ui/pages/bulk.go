package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// BulkFormData — данные формы массового редактирования.
type BulkFormData struct {
	Username   string
	Count      int
	Stages     []Option
	Statuses   []Option
	Priorities []Option
	Directors  []Option
	Editors    []Option
	Alert      *Alert
}

// BulkForm — форма массового редактирования выбранных записей.
// Пустое поле не меняется; флажок «очистить» сбрасывает значение.
func BulkForm(data BulkFormData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<section class="card"><h1>`)
		h.tf("bulk.title", data.Count)
		h.raw(`</h1><p class="hint">`)
		h.t("bulk.hint")
		h.raw(`</p>`)
		h.alert(data.Alert)
		h.raw(`<form method="post" action="/ui/bulk" class="grid-form">`)

		h.bulkClear("filmingStart", func() { h.inputField("filmingStart", i18n.T(ctx, "col.filming_start"), "date", "") })
		h.bulkClear("editStart", func() { h.inputField("editStart", i18n.T(ctx, "col.edit_start"), "date", "") })
		h.bulkClear("stage", func() { h.selectField("stage", i18n.T(ctx, "col.stage"), data.Stages) })
		h.bulkClear("status", func() { h.selectField("status", i18n.T(ctx, "col.status"), data.Statuses) })
		h.bulkClear("priority", func() { h.selectField("priority", i18n.T(ctx, "col.priority"), data.Priorities) })
		h.bulkClear("referenceLink", func() { h.inputField("referenceLink", i18n.T(ctx, "col.reference"), "url", "") })
		h.bulkClear("comment", func() { h.inputField("comment", i18n.T(ctx, "col.comment"), "text", "") })
		h.bulkClear("director", func() { h.selectField("director", i18n.T(ctx, "col.director"), data.Directors) })
		h.bulkClear("editor", func() { h.selectField("editor", i18n.T(ctx, "col.editor"), data.Editors) })

		h.raw(`<div class="form-actions"><button type="submit" class="primary"`)
		if data.Count == 0 {
			h.raw(` disabled`)
		}
		h.raw(`>`)
		h.t("bulk.apply")
		h.raw(`</button><a class="button" href="/ui/videos">`)
		h.t("form.cancel")
		h.raw(`</a></div></form></section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.Tf(ctx, "bulk.title", data.Count), data.Username, body).Render(ctx, w)
	})
}

// bulkClear оборачивает поле флажком clear_<name>.
func (h *html) bulkClear(name string, field func()) {
	h.raw(`<div class="bulk-field">`)
	field()
	h.raw(`<label class="clear"><input type="checkbox" name="clear_`, attr(name), `" value="1"> `)
	h.t("bulk.clear")
	h.raw(`</label></div>`)
}

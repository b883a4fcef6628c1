package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// VideoFormData — данные формы создания или редактирования записи.
type VideoFormData struct {
	Username string
	// ID — 0 для новой записи.
	ID              int64
	CompilationName string
	FilmingStart    string
	EditStart       string
	ReferenceLink   string
	Comment         string
	Releases        [model.MaxReleases]string
	Stages          []Option
	Statuses        []Option
	Priorities      []Option
	Directors       []Option
	Editors         []Option
	Alert           *Alert
}

// IsEdit сообщает, что форма редактирует существующую запись.
func (d VideoFormData) IsEdit() bool { return d.ID != 0 }

// EnumOptions строит варианты выпадающего списка из значений перечисления.
func EnumOptions[T ~string](values []T, selected T) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: string(v), Label: string(v), Selected: v == selected})
	}
	return out
}

// PersonOptions строит варианты выбора режиссёра или монтажёра по имени.
func PersonOptions(people []model.Person, selected string) []Option {
	out := make([]Option, 0, len(people))
	for _, p := range people {
		out = append(out, Option{Value: p.Name, Label: p.Name, Selected: p.Name == selected})
	}
	return out
}

// VideoForm — форма записи. Для существующей записи отправляется на
// /ui/videos/{id}, для новой — на /ui/videos.
func VideoForm(data VideoFormData) templ.Component {
	titleKey := "form.create_title"
	action := "/ui/videos"
	if data.IsEdit() {
		titleKey = "form.edit_title"
		action = "/ui/videos/" + id64(data.ID)
	}

	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<section class="card"><h1>`)
		h.t(titleKey)
		h.raw(`</h1>`)
		h.alert(data.Alert)
		h.raw(`<form method="post" action="`, attr(action), `" class="grid-form">`)

		h.inputField("compilationName", i18n.T(ctx, "col.name"), "text", data.CompilationName)
		h.inputField("filmingStart", i18n.T(ctx, "col.filming_start"), "date", data.FilmingStart)
		h.inputField("editStart", i18n.T(ctx, "col.edit_start"), "date", data.EditStart)
		h.selectField("stage", i18n.T(ctx, "col.stage"), data.Stages)
		h.selectField("status", i18n.T(ctx, "col.status"), data.Statuses)
		h.selectField("priority", i18n.T(ctx, "col.priority"), data.Priorities)
		h.inputField("referenceLink", i18n.T(ctx, "col.reference"), "url", data.ReferenceLink)
		h.inputField("comment", i18n.T(ctx, "col.comment"), "text", data.Comment)

		if data.IsEdit() {
			h.selectField("director", i18n.T(ctx, "col.director"), data.Directors)
			h.selectField("editor", i18n.T(ctx, "col.editor"), data.Editors)
			for i, value := range data.Releases {
				h.inputField("release"+itoa(i+1), i18n.Tf(ctx, "form.release", i+1), "text", value)
			}
		}

		h.raw(`<div class="form-actions"><button type="submit" class="primary">`)
		h.t("form.save")
		h.raw(`</button><a class="button" href="/ui/videos">`)
		h.t("form.cancel")
		h.raw(`</a></div></form></section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, titleKey), data.Username, body).Render(ctx, w)
	})
}

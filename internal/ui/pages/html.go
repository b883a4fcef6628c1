// Пакет pages — templ-компоненты страниц Production Plan UI.
// Компоненты собираются через templ.ComponentFunc; текст экранируется
// templ.EscapeString, ссылки проходят через templ.URL.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// Alert — сообщение над содержимым страницы.
type Alert struct {
	// Variant — success, error, warning.
	Variant string
	Message string
}

// Option — элемент выпадающего списка.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// html — последовательная запись разметки с запоминанием первой ошибки.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTML(ctx context.Context, w io.Writer) *html {
	return &html{ctx: ctx, w: w}
}

// raw пишет разметку без экранирования.
func (h *html) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text пишет экранированный текст.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// t пишет перевод ключа.
func (h *html) t(key string) {
	h.text(i18n.T(h.ctx, key))
}

// tf пишет перевод ключа с аргументами.
func (h *html) tf(key string, args ...any) {
	h.text(i18n.Tf(h.ctx, key, args...))
}

// render вставляет вложенный компонент.
func (h *html) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// attr возвращает экранированное значение атрибута.
func attr(s string) string {
	return templ.EscapeString(s)
}

// href возвращает безопасный URL для атрибута href.
func href(s string) string {
	return attr(string(templ.URL(s)))
}

func itoa(n int) string { return strconv.Itoa(n) }

func id64(n int64) string { return strconv.FormatInt(n, 10) }

// alert пишет блок сообщения.
func (h *html) alert(a *Alert) {
	if a == nil || a.Message == "" {
		return
	}
	h.raw(`<div class="alert alert-`, attr(a.Variant), `" role="alert">`)
	h.text(a.Message)
	h.raw(`</div>`)
}

// selectField пишет выпадающий список с пустым вариантом.
func (h *html) selectField(name, label string, options []Option) {
	h.raw(`<label class="field"><span>`)
	h.text(label)
	h.raw(`</span><select name="`, attr(name), `"><option value="">`)
	h.t("form.none")
	h.raw(`</option>`)
	for _, o := range options {
		h.raw(`<option value="`, attr(o.Value), `"`)
		if o.Selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(o.Label)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
}

// inputField пишет текстовое поле.
func (h *html) inputField(name, label, inputType, value string) {
	h.raw(`<label class="field"><span>`)
	h.text(label)
	h.raw(`</span><input type="`, attr(inputType), `" name="`, attr(name), `" value="`, attr(value), `"></label>`)
}

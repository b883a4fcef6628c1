package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// Layout — общий каркас страницы: заголовок, навигация, переключатель языка.
// username пустой для страниц без входа.
func Layout(title, username string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		lang := i18n.LangFromContext(ctx)

		h.raw(`<!DOCTYPE html><html lang="`, attr(lang), `"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · `)
		h.t("app.title")
		h.raw(`</title><link rel="stylesheet" href="/static/css/output.css">`)
		h.raw(`<script src="/static/js/selection.js" defer></script></head><body>`)

		h.raw(`<header class="topbar"><span class="brand">`)
		h.t("app.title")
		h.raw(`</span>`)
		if username != "" {
			h.raw(`<nav><a href="/ui/videos">`)
			h.t("nav.videos")
			h.raw(`</a><a href="/ui/retention">`)
			h.t("nav.retention")
			h.raw(`</a></nav><span class="user">`)
			h.text(username)
			h.raw(`</span><form method="post" action="/ui/logout" class="inline"><button type="submit">`)
			h.t("nav.logout")
			h.raw(`</button></form>`)
		}
		h.raw(`<form method="post" action="/ui/set-language" class="inline lang">`)
		for _, l := range i18n.Languages {
			h.raw(`<button type="submit" name="lang" value="`, attr(l), `"`)
			if l == lang {
				h.raw(` class="active"`)
			}
			h.raw(`>`, attr(l), `</button>`)
		}
		h.raw(`</form></header><main>`)

		h.render(body)

		h.raw(`</main></body></html>`)
		return h.err
	})
}

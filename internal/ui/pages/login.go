package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// LoginData — данные страницы входа.
type LoginData struct {
	Username string
	Alert    *Alert
}

// Login — страница входа.
func Login(data LoginData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<section class="card narrow"><h1>`)
		h.t("login.title")
		h.raw(`</h1>`)
		h.alert(data.Alert)
		h.raw(`<form method="post" action="/ui/login">`)
		h.inputField("username", i18n.T(ctx, "login.username"), "text", data.Username)
		h.raw(`<label class="field"><span>`)
		h.t("login.password")
		h.raw(`</span><input type="password" name="password" autocomplete="current-password"></label>`)
		h.raw(`<button type="submit" class="primary">`)
		h.t("login.submit")
		h.raw(`</button></form></section>`)
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, "login.title"), "", body).Render(ctx, w)
	})
}

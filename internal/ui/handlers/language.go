// language.go — обработчик переключения языка UI.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/bigkaa/prodplan/internal/ui/i18n"
)

// HandleSetLanguage обрабатывает POST /ui/set-language.
// Устанавливает cookie "lang" и перенаправляет обратно.
// Параметр lang: "en" или "ru" (из query или form).
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLanguage
	}

	// Устанавливаем cookie "lang" на 1 год
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo возвращает путь из Referer того же хоста или главную страницу.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return HomePath
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

package i18n

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-US,en;q=0.9", "en"},
		{"de-DE", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		if got := MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, ожидалось %q", tt.accept, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("ru") || !IsSupported("en") {
		t.Error("en и ru должны поддерживаться")
	}
	if IsSupported("de") || IsSupported("") {
		t.Error("de и пустая строка не поддерживаются")
	}
}

func TestTranslate_Fallback(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("en", []byte(`{"a":"A","b":"B"}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadMessages("ru", []byte(`{"a":"А"}`)); err != nil {
		t.Fatal(err)
	}

	if got := b.Translate("ru", "a"); got != "А" {
		t.Errorf("ru/a = %q", got)
	}
	if got := b.Translate("ru", "b"); got != "B" {
		t.Errorf("ожидался fallback на en, получено %q", got)
	}
	if got := b.Translate("ru", "missing"); got != "missing" {
		t.Errorf("отсутствующий ключ должен возвращаться как есть, получено %q", got)
	}
	if err := b.LoadMessages("en", []byte(`{"n":"%d items"}`)); err != nil {
		t.Fatal(err)
	}
	if got := b.Translatef("ru", "n", 3); got != "3 items" {
		t.Errorf("Translatef = %q", got)
	}
}

func TestLoadMessages_InvalidJSON(t *testing.T) {
	b := NewBundle(nil)
	if err := b.LoadMessages("en", []byte(`{`)); err == nil {
		t.Error("ожидалась ошибка разбора")
	}
}

// Каталоги должны содержать одинаковый набор ключей.
func TestEmbeddedCatalogs_SameKeys(t *testing.T) {
	catalogs := make(map[string]map[string]string)
	for _, lang := range Languages {
		data, err := fs.ReadFile(LocaleFS, "locales/"+lang+".json")
		if err != nil {
			t.Fatalf("каталог %s: %v", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("каталог %s: %v", lang, err)
		}
		catalogs[lang] = m
	}
	for key := range catalogs[DefaultLanguage] {
		for _, lang := range Languages {
			if _, ok := catalogs[lang][key]; !ok {
				t.Errorf("ключ %q отсутствует в каталоге %s", key, lang)
			}
		}
	}
	for _, lang := range Languages {
		if len(catalogs[lang]) != len(catalogs[DefaultLanguage]) {
			t.Errorf("каталог %s: %d ключей, в %s: %d", lang, len(catalogs[lang]), DefaultLanguage, len(catalogs[DefaultLanguage]))
		}
	}
}

func TestLoadFromEmbedFS(t *testing.T) {
	b := NewBundle(testLogger())
	if err := LoadFromEmbedFS(b, testLogger()); err != nil {
		t.Fatalf("LoadFromEmbedFS: %v", err)
	}
	if got := b.Translate("ru", "nav.logout"); got != "Выйти" {
		t.Errorf("ru/nav.logout = %q", got)
	}
}

func TestMiddleware_DetectsLanguage(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"cookie wins", "ru", "en-US", "ru"},
		{"unsupported cookie", "de", "ru-RU", "ru"},
		{"accept language", "", "ru", "ru"},
		{"default", "", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = LangFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("язык = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

func TestLangFromContext_Default(t *testing.T) {
	if got := LangFromContext(context.Background()); got != DefaultLanguage {
		t.Errorf("LangFromContext = %q", got)
	}
}

func TestTranslatef_LocaleNumbers(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("en", []byte(`{"n":"%d records"}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadMessages("ru", []byte(`{"n":"записей: %d"}`)); err != nil {
		t.Fatal(err)
	}

	if got := b.Translatef("en", "n", 12345); got != "12,345 records" {
		t.Errorf("en = %q", got)
	}
	if got := b.Translatef("ru", "n", 7); got != "записей: 7" {
		t.Errorf("ru = %q", got)
	}
	if got := b.Translatef("ru", "id %d", 5); got != "id 5" {
		t.Errorf("отсутствующий ключ = %q", got)
	}
}

func TestMissingKeys(t *testing.T) {
	b := NewBundle(testLogger())
	_ = b.LoadMessages("en", []byte(`{"a":"A","b":"B","c":"C"}`))
	_ = b.LoadMessages("ru", []byte(`{"b":"Б"}`))

	got := b.MissingKeys("ru")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("MissingKeys = %v", got)
	}
	if got := b.MissingKeys("en"); len(got) != 0 {
		t.Errorf("MissingKeys(en) = %v", got)
	}
}

// Пакет i18n — интернационализация Production Plan UI.
// Предоставляет функции T(ctx, key) и Tf(ctx, key, args...) для получения
// переведённых строк из контекста HTTP-запроса.
// Поддерживаемые языки: English (en), Русский (ru).
// Язык определяется middleware: cookie "lang" → Accept-Language → default "en".
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Поддерживаемые языки
var (
	// SupportedLanguages — список поддерживаемых тегов языков.
	SupportedLanguages = []language.Tag{
		language.English,
		language.Russian,
	}

	// matcher — языковой matcher для Accept-Language.
	matcher = language.NewMatcher(SupportedLanguages)
)

// Languages — коды поддерживаемых языков, первый — язык по умолчанию.
var Languages = []string{"en", "ru"}

// DefaultLanguage — язык по умолчанию.
const DefaultLanguage = "en"

// IsSupported сообщает, поддерживается ли код языка.
func IsSupported(lang string) bool {
	return slices.Contains(Languages, lang)
}

// contextKey — тип ключа для контекста (избегаем коллизий).
type contextKey string

const (
	// contextKeyLang — текущий язык в контексте запроса.
	contextKeyLang contextKey = "i18n_lang"
)

// Bundle — хранилище переводов для всех языков.
// Строки без аргументов берутся из плоских каталогов, строки с аргументами
// форматируются через x/text/message: числа выводятся по правилам языка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string // lang → key → translation
	builder  *catalog.Builder
	printers map[string]*message.Printer
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		builder:  catalog.NewBuilder(catalog.Fallback(language.Make(DefaultLanguage))),
		printers: make(map[string]*message.Printer),
		logger:   logger,
	}
}

// LoadMessages загружает JSON-каталог переводов для указанного языка.
// JSON формат: {"key": "translation", ...} (плоский). Повторная загрузка
// дополняет каталог.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}
	tag := language.Make(lang)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.catalogs[lang] == nil {
		b.catalogs[lang] = make(map[string]string, len(messages))
	}
	for key, msg := range messages {
		if err := b.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("i18n: ключ %s/%s: %w", lang, key, err)
		}
		b.catalogs[lang][key] = msg
	}
	b.printers[lang] = message.NewPrinter(tag, message.Catalog(b.builder))

	if b.logger != nil {
		b.logger.Info("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает перевод по ключу для указанного языка.
// Если ключ не найден — возвращает ключ как есть (для отладки).
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Translatef возвращает перевод с подстановкой аргументов.
// Отсутствующий ключ используется как формат-строка.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	if len(args) == 0 {
		return b.Translate(lang, key)
	}

	b.mu.RLock()
	var p *message.Printer
	if _, ok := b.catalogs[lang][key]; ok {
		p = b.printers[lang]
	} else if _, ok := b.catalogs[DefaultLanguage][key]; ok {
		p = b.printers[DefaultLanguage]
	}
	b.mu.RUnlock()
	if p == nil {
		return formatFunc(key, args...)
	}
	return p.Sprintf(key, args...)
}

// MissingKeys возвращает отсортированные ключи языка по умолчанию,
// которых нет в каталоге lang.
func (b *Bundle) MissingKeys(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var missing []string
	for _, key := range slices.Sorted(maps.Keys(b.catalogs[DefaultLanguage])) {
		if _, ok := b.catalogs[lang][key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// --- Глобальный Bundle (singleton) ---

var (
	globalBundle *Bundle
	globalOnce   sync.Once
)

// Init инициализирует глобальный Bundle. Вызывается один раз при старте.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		globalBundle = NewBundle(logger)
	})
	return globalBundle
}

// GetBundle возвращает глобальный Bundle (nil если не инициализирован).
func GetBundle() *Bundle {
	return globalBundle
}

// --- Функции для использования в templ ---

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. Default: "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// T возвращает перевод по ключу, используя язык из контекста.
// Основная функция для использования в .templ файлах: { i18n.T(ctx, "key") }
func T(ctx context.Context, key string) string {
	if globalBundle == nil {
		return key
	}
	return globalBundle.Translate(LangFromContext(ctx), key)
}

// Tf возвращает перевод по ключу с аргументами (fmt.Sprintf).
// Для использования в .templ файлах: { i18n.Tf(ctx, "key", arg1, arg2) }
// Формат-строка загружается из JSON-каталога, поэтому go vet printf-проверка
// не применяется — используется обёртка formatFunc.
func Tf(ctx context.Context, key string, args ...any) string {
	if globalBundle == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return globalBundle.Translatef(LangFromContext(ctx), key, args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят
// из каталогов во время выполнения, printf-проверка go vet к ним неприменима.
var formatFunc = fmt.Sprintf

// MatchLanguage определяет лучший язык из Accept-Language заголовка.
// Возвращает "en" или "ru".
func MatchLanguage(acceptLanguage string) string {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	lang := base.String()

	// Нормализуем к поддерживаемым значениям
	for _, supported := range Languages {
		if strings.HasPrefix(lang, supported) {
			return supported
		}
	}
	return DefaultLanguage
}

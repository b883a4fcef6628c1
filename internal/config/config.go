// Пакет config — загрузка и валидация конфигурации Production Plan UI
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Production Plan UI.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- REST API производственного плана ---

	// Базовый URL API (например, http://localhost:8080)
	APIURL string
	// Путь к CA-сертификату для TLS-соединений с API (опционально)
	APICACertPath string
	// Таймаут HTTP-клиента API, 0 — без собственного таймаута
	APITimeout time.Duration
	// URL JWKS для проверки подписи токена входа (опционально)
	APIJWKSURL string
	// Проверять исходящие тела запросов по встроенному OpenAPI-контракту
	APIContractValidation bool

	// --- UI ---

	// Ключ шифрования cookie сессии (AES-256-GCM)
	UISessionSecret string
	// Secure flag для cookie
	UISecureCookie bool
	// Число записей на странице списка
	UIPageSize int
	// Размер палитры цветов монтажёров
	UIPaletteSize int
	// Момент удержания, по которому выбирается лучшая версия
	RetentionKey model.RetentionTime

	// --- Сессии ---

	// Интервал фоновой проверки токенов
	LivenessInterval time.Duration
	// TTL кэша справочников режиссёров и монтажёров
	DirectoryCacheTTL time.Duration
	// Время жизни состояния UI-сессии
	SessionStateTTL time.Duration
	// Максимальное число отслеживаемых сессий
	SessionStateMax int
	// Число попыток входа в минуту с одного IP
	LoginRateLimit int

	// --- topologymetrics ---

	// Имя группы в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Путь health endpoint API для проверки зависимости
	DephealthHealthPath string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// PP_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("PP_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("PP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// PP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("PP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("PP_LOG_LEVEL: %w", err)
	}

	// PP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("PP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("PP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- REST API ---

	// PP_API_URL — обязательный
	cfg.APIURL, err = getEnvRequired("PP_API_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if u, parseErr := url.Parse(cfg.APIURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("PP_API_URL: некорректный URL %q", cfg.APIURL)
	}

	// PP_API_CA_CERT_PATH — путь к CA-сертификату API (опционально)
	cfg.APICACertPath = getEnvDefault("PP_API_CA_CERT_PATH", "")

	// PP_API_TIMEOUT — таймаут HTTP-клиента (по умолчанию 0 — стандартное поведение транспорта)
	cfg.APITimeout, err = getEnvDuration("PP_API_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("PP_API_TIMEOUT: %w", err)
	}

	// PP_API_JWKS_URL — JWKS для проверки токена (опционально)
	cfg.APIJWKSURL = getEnvDefault("PP_API_JWKS_URL", "")

	// PP_API_CONTRACT_VALIDATION — проверка исходящих тел (по умолчанию false)
	cfg.APIContractValidation, err = getEnvBool("PP_API_CONTRACT_VALIDATION", false)
	if err != nil {
		return nil, fmt.Errorf("PP_API_CONTRACT_VALIDATION: %w", err)
	}

	// --- UI ---

	// PP_UI_SESSION_SECRET — ключ cookie (пустой — случайный при каждом старте)
	cfg.UISessionSecret = getEnvDefault("PP_UI_SESSION_SECRET", "")

	// PP_UI_SECURE_COOKIE — Secure flag (по умолчанию false)
	cfg.UISecureCookie, err = getEnvBool("PP_UI_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("PP_UI_SECURE_COOKIE: %w", err)
	}

	// PP_UI_PAGE_SIZE — размер страницы (по умолчанию 10)
	cfg.UIPageSize, err = getEnvInt("PP_UI_PAGE_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("PP_UI_PAGE_SIZE: %w", err)
	}
	if cfg.UIPageSize < 1 || cfg.UIPageSize > 200 {
		return nil, fmt.Errorf("PP_UI_PAGE_SIZE: значение %d вне допустимого диапазона 1-200", cfg.UIPageSize)
	}

	// PP_UI_PALETTE_SIZE — число цветов монтажёров (по умолчанию 5)
	cfg.UIPaletteSize, err = getEnvInt("PP_UI_PALETTE_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("PP_UI_PALETTE_SIZE: %w", err)
	}
	if cfg.UIPaletteSize < 1 || cfg.UIPaletteSize > 16 {
		return nil, fmt.Errorf("PP_UI_PALETTE_SIZE: значение %d вне допустимого диапазона 1-16", cfg.UIPaletteSize)
	}

	// PP_RETENTION_KEY — момент ранжирования версий (по умолчанию 30s)
	key, ok := model.ParseRetentionTime(getEnvDefault("PP_RETENTION_KEY", string(model.Retention30s)))
	if !ok {
		return nil, fmt.Errorf("PP_RETENTION_KEY: недопустимое значение %q, допустимые: 3s, 15s, 30s, 45s", key)
	}
	cfg.RetentionKey = key

	// --- Сессии ---

	// PP_LIVENESS_INTERVAL — интервал проверки токенов (по умолчанию 8h)
	cfg.LivenessInterval, err = getEnvDuration("PP_LIVENESS_INTERVAL", 8*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("PP_LIVENESS_INTERVAL: %w", err)
	}
	if cfg.LivenessInterval <= 0 {
		return nil, fmt.Errorf("PP_LIVENESS_INTERVAL: значение должно быть положительным")
	}

	// PP_DIRECTORY_CACHE_TTL — TTL справочников (по умолчанию 5m)
	cfg.DirectoryCacheTTL, err = getEnvDuration("PP_DIRECTORY_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("PP_DIRECTORY_CACHE_TTL: %w", err)
	}

	// PP_SESSION_STATE_TTL — время жизни состояния сессии (по умолчанию 24h)
	cfg.SessionStateTTL, err = getEnvDuration("PP_SESSION_STATE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("PP_SESSION_STATE_TTL: %w", err)
	}

	// PP_SESSION_STATE_MAX — число отслеживаемых сессий (по умолчанию 1000)
	cfg.SessionStateMax, err = getEnvInt("PP_SESSION_STATE_MAX", 1000)
	if err != nil {
		return nil, fmt.Errorf("PP_SESSION_STATE_MAX: %w", err)
	}
	if cfg.SessionStateMax < 1 {
		return nil, fmt.Errorf("PP_SESSION_STATE_MAX: значение %d должно быть положительным", cfg.SessionStateMax)
	}

	// PP_LOGIN_RATE_LIMIT — попыток входа в минуту (по умолчанию 10)
	cfg.LoginRateLimit, err = getEnvInt("PP_LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("PP_LOGIN_RATE_LIMIT: %w", err)
	}
	if cfg.LoginRateLimit < 1 {
		return nil, fmt.Errorf("PP_LOGIN_RATE_LIMIT: значение %d должно быть положительным", cfg.LoginRateLimit)
	}

	// --- topologymetrics ---

	// PP_DEPHEALTH_GROUP — группа в метриках (по умолчанию prodplan)
	cfg.DephealthGroup = getEnvDefault("PP_DEPHEALTH_GROUP", "prodplan")

	// PP_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("PP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// PP_DEPHEALTH_HEALTH_PATH — health endpoint API (по умолчанию /actuator/health)
	cfg.DephealthHealthPath = getEnvDefault("PP_DEPHEALTH_HEALTH_PATH", "/actuator/health")
	if !strings.HasPrefix(cfg.DephealthHealthPath, "/") {
		return nil, fmt.Errorf("PP_DEPHEALTH_HEALTH_PATH: путь %q должен начинаться с /", cfg.DephealthHealthPath)
	}

	// --- Graceful shutdown ---

	// PP_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("PP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (используйте true/false)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

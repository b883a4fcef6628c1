package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"PP_API_URL": "http://localhost:8080",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, ожидается 8000", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.APITimeout != 0 {
		t.Errorf("APITimeout = %v, ожидается 0", cfg.APITimeout)
	}
	if cfg.APIContractValidation {
		t.Error("APIContractValidation должна быть выключена по умолчанию")
	}
	if cfg.UIPageSize != 10 {
		t.Errorf("UIPageSize = %d, ожидается 10", cfg.UIPageSize)
	}
	if cfg.UIPaletteSize != 5 {
		t.Errorf("UIPaletteSize = %d, ожидается 5", cfg.UIPaletteSize)
	}
	if cfg.RetentionKey != model.Retention30s {
		t.Errorf("RetentionKey = %q, ожидается 30s", cfg.RetentionKey)
	}
	if cfg.LivenessInterval != 8*time.Hour {
		t.Errorf("LivenessInterval = %v, ожидается 8h", cfg.LivenessInterval)
	}
	if cfg.DirectoryCacheTTL != 5*time.Minute {
		t.Errorf("DirectoryCacheTTL = %v, ожидается 5m", cfg.DirectoryCacheTTL)
	}
	if cfg.SessionStateTTL != 24*time.Hour {
		t.Errorf("SessionStateTTL = %v, ожидается 24h", cfg.SessionStateTTL)
	}
	if cfg.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit = %d, ожидается 10", cfg.LoginRateLimit)
	}
	if cfg.DephealthGroup != "prodplan" {
		t.Errorf("DephealthGroup = %q, ожидается prodplan", cfg.DephealthGroup)
	}
	if cfg.DephealthHealthPath != "/actuator/health" {
		t.Errorf("DephealthHealthPath = %q, ожидается /actuator/health", cfg.DephealthHealthPath)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["PP_PORT"] = "9090"
	envs["PP_LOG_LEVEL"] = "debug"
	envs["PP_LOG_FORMAT"] = "text"
	envs["PP_API_URL"] = "https://api.example.com/"
	envs["PP_API_TIMEOUT"] = "10s"
	envs["PP_API_CONTRACT_VALIDATION"] = "true"
	envs["PP_UI_SECURE_COOKIE"] = "1"
	envs["PP_UI_PAGE_SIZE"] = "25"
	envs["PP_RETENTION_KEY"] = "15s"
	envs["PP_LIVENESS_INTERVAL"] = "1h"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q, trailing slash должен быть удалён", cfg.APIURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v, ожидается 10s", cfg.APITimeout)
	}
	if !cfg.APIContractValidation || !cfg.UISecureCookie {
		t.Error("булевы флаги должны быть включены")
	}
	if cfg.UIPageSize != 25 {
		t.Errorf("UIPageSize = %d, ожидается 25", cfg.UIPageSize)
	}
	if cfg.RetentionKey != model.Retention15s {
		t.Errorf("RetentionKey = %q, ожидается 15s", cfg.RetentionKey)
	}
	if cfg.LivenessInterval != time.Hour {
		t.Errorf("LivenessInterval = %v, ожидается 1h", cfg.LivenessInterval)
	}
}

func TestLoad_MissingAPIURL(t *testing.T) {
	t.Setenv("PP_API_URL", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() не вернул ошибку при отсутствии PP_API_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"порт не число", "PP_PORT", "abc"},
		{"порт вне диапазона", "PP_PORT", "70000"},
		{"уровень логирования", "PP_LOG_LEVEL", "verbose"},
		{"формат логов", "PP_LOG_FORMAT", "xml"},
		{"URL без схемы", "PP_API_URL", "localhost:8080"},
		{"булево значение", "PP_API_CONTRACT_VALIDATION", "yes please"},
		{"размер страницы", "PP_UI_PAGE_SIZE", "0"},
		{"размер палитры", "PP_UI_PALETTE_SIZE", "100"},
		{"момент ранжирования", "PP_RETENTION_KEY", "60s"},
		{"интервал проверки", "PP_LIVENESS_INTERVAL", "abc"},
		{"нулевой интервал проверки", "PP_LIVENESS_INTERVAL", "0s"},
		{"лимит входа", "PP_LOGIN_RATE_LIMIT", "-1"},
		{"путь health", "PP_DEPHEALTH_HEALTH_PATH", "health"},
		{"таймаут shutdown", "PP_SHUTDOWN_TIMEOUT", "five"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			envs[tt.key] = tt.value
			setEnvs(t, envs)

			_, err := Load()
			if err == nil {
				t.Errorf("Load() не вернул ошибку при %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:  slog.LevelInfo,
				LogFormat: tt.format,
			}
			logger := SetupLogger(cfg)
			if logger == nil {
				t.Error("SetupLogger() вернул nil")
			}
		})
	}
}

// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Production Plan UI мониторит одну зависимость:
//   - REST API производственного плана — HTTP checker к health endpoint (critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для API
	"github.com/prometheus/client_golang/prometheus"
)

// APIDependencyName — имя зависимости REST API в метриках.
const APIDependencyName = "production-plan-api"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
//
// Параметры:
//   - serviceID — имя вершины графа текущего приложения (e.g. "prodplan-ui")
//   - group — имя группы в метриках (PP_DEPHEALTH_GROUP)
//   - apiURL — базовый URL REST API
//   - healthPath — путь health endpoint API (PP_DEPHEALTH_HEALTH_PATH)
//   - checkInterval — интервал проверки зависимостей (PP_DEPHEALTH_CHECK_INTERVAL)
func NewDephealthService(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, apiURL, healthPath, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, apiURL, healthPath, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP(APIDependencyName,
			dephealth.FromURL(apiURL),
			dephealth.WithHTTPHealthPath(healthPath),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
			dephealth.WithHTTPTLSSkipVerify(true), // Dev-среда: self-signed сертификаты
		),
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (REST API)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// --- ReadinessChecker для REST API ---

// HealthSource — источник состояния зависимостей.
type HealthSource interface {
	Health() map[string]bool
}

const statusFail = "fail"

// APIReadinessChecker — проверка доступности REST API.
// Использует результат dephealth, а до первой проверки — прямой запрос.
type APIReadinessChecker struct {
	source    HealthSource
	healthURL string
	client    *http.Client
}

// NewAPIReadinessChecker создаёт checker доступности API.
// source может быть nil, тогда всегда выполняется прямой запрос.
func NewAPIReadinessChecker(source HealthSource, apiURL, healthPath string, client *http.Client) *APIReadinessChecker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &APIReadinessChecker{
		source:    source,
		healthURL: apiURL + healthPath,
		client:    client,
	}
}

// CheckReady возвращает статус ("ok", "fail") и сообщение.
func (c *APIReadinessChecker) CheckReady() (status, message string) {
	if c.source != nil {
		// Health() возвращает ключи формата "dependency:host:port"
		for key, healthy := range c.source.Health() {
			if !strings.HasPrefix(key, APIDependencyName+":") {
				continue
			}
			if healthy {
				return "ok", "REST API доступен"
			}
			return statusFail, "REST API недоступен"
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.healthURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return statusFail, fmt.Sprintf("REST API недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return statusFail, fmt.Sprintf("REST API вернул статус %d", resp.StatusCode)
	}
	return "ok", "REST API доступен"
}

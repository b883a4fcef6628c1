// Пакет apiclient — HTTP-клиент REST API производственного плана.
// Все запросы, кроме входа, передают Bearer-токен; ответ 401 отображается
// в ErrUnauthorized. Поддерживает TLS с кастомным CA (PP_API_CA_CERT_PATH).
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
)

// Prometheus-метрики исходящих запросов к API.
var apiRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pp_api_request_duration_seconds",
		Help:    "Длительность запросов к REST API производственного плана",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "status"},
)

// TokenProvider — функция, возвращающая токен для заголовка Authorization.
type TokenProvider func(ctx context.Context) (string, error)

// PayloadValidator проверяет тела запросов перед отправкой.
type PayloadValidator interface {
	ValidateCreate(body []byte) error
	ValidateUpdate(body []byte) error
}

// Option — функциональная опция клиента.
type Option func(*Client)

// WithValidator включает проверку тел запросов по контракту.
func WithValidator(v PayloadValidator) Option {
	return func(c *Client) { c.validator = v }
}

// WithHTTPClient подменяет HTTP-клиент (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client — HTTP-клиент REST API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenProvider TokenProvider
	validator     PayloadValidator
	logger        *slog.Logger
}

// New создаёт клиент API.
// baseURL — адрес API (например, http://localhost:8080).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут HTTP-клиента, 0 — без собственного таймаута.
// tokenProvider — источник Bearer-токена (nil — ContextToken).
func New(
	baseURL string,
	caCertPath string,
	timeout time.Duration,
	tokenProvider TokenProvider,
	logger *slog.Logger,
	opts ...Option,
) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("некорректный адрес API %q: %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат API добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	if tokenProvider == nil {
		tokenProvider = ContextToken
	}

	c := &Client{
		httpClient:    httpClient,
		baseURL:       normalizeURL(baseURL),
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "api_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL возвращает адрес API без завершающего слэша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// loginRequest — тело POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse — ответ POST /api/auth/login.
type loginResponse struct {
	Token string `json:"token"`
}

// Login получает токен по логину и паролю.
// POST /api/auth/login — единственный запрос без авторизации.
// Любой неуспешный ответ сводится к ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("сериализация запроса Login: %w", err)
	}

	var resp loginResponse
	err = c.do(ctx, call{
		operation: "login",
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      body,
		anonymous: true,
	}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: статус %d", ErrInvalidCredentials, statusErr.StatusCode)
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: пустой токен в ответе", ErrInvalidCredentials)
	}
	return resp.Token, nil
}

// ListVideos запрашивает страницу записей.
// GET /api/videos?page=N&size=M&sort=field,dir
func (c *Client) ListVideos(ctx context.Context, req model.PageRequest) (*model.VideoPage, error) {
	var page model.VideoPage
	if err := c.do(ctx, call{
		operation: "list_videos",
		method:    http.MethodGet,
		path:      "/api/videos",
		query:     pageQuery(req),
	}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func pageQuery(req model.PageRequest) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("size", strconv.Itoa(req.Size))
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	return q
}

// CreateVideo создаёт запись.
// POST /api/videos
func (c *Client) CreateVideo(ctx context.Context, req model.CreateRequest) (*model.VideoRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса CreateVideo: %w", err)
	}
	if c.validator != nil {
		if err := c.validator.ValidateCreate(body); err != nil {
			return nil, err
		}
	}

	var record model.VideoRecord
	if err := c.do(ctx, call{
		operation: "create_video",
		method:    http.MethodPost,
		path:      "/api/videos",
		body:      body,
	}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateVideo частично обновляет запись.
// PATCH /api/videos/{id}
func (c *Client) UpdateVideo(ctx context.Context, id int64, payload diff.UpdatePayload) (*model.VideoRecord, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса UpdateVideo: %w", err)
	}
	if c.validator != nil {
		if err := c.validator.ValidateUpdate(body); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("PATCH записи",
		slog.Int64("id", id),
		slog.Any("fields", payload.Keys()),
	)

	var record model.VideoRecord
	if err := c.do(ctx, call{
		operation: "update_video",
		method:    http.MethodPatch,
		path:      "/api/videos/" + strconv.FormatInt(id, 10),
		body:      body,
	}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteVideo удаляет запись.
// DELETE /api/videos/{id}
func (c *Client) DeleteVideo(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		operation: "delete_video",
		method:    http.MethodDelete,
		path:      "/api/videos/" + strconv.FormatInt(id, 10),
	}, nil)
}

// ListDirectors запрашивает справочник режиссёров.
// GET /api/directors
func (c *Client) ListDirectors(ctx context.Context) ([]model.Person, error) {
	var people []model.Person
	if err := c.do(ctx, call{operation: "list_directors", method: http.MethodGet, path: "/api/directors"}, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// ListEditors запрашивает справочник монтажёров.
// GET /api/editors
func (c *Client) ListEditors(ctx context.Context) ([]model.Person, error) {
	var people []model.Person
	if err := c.do(ctx, call{operation: "list_editors", method: http.MethodGet, path: "/api/editors"}, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// Ping проверяет действительность токена минимальным запросом списка.
// GET /api/videos?page=0&size=1 с явно переданным токеном.
func (c *Client) Ping(ctx context.Context, token string) error {
	return c.do(ctx, call{
		operation: "ping",
		method:    http.MethodGet,
		path:      "/api/videos",
		query:     pageQuery(model.PageRequest{Page: 0, Size: 1}),
		token:     token,
	}, nil)
}

// call — параметры одного запроса к API.
type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      []byte
	// token — явный токен; пустой означает tokenProvider.
	token     string
	anonymous bool
}

// do выполняет запрос и декодирует JSON-ответ в out (nil — тело игнорируется).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	reqURL := c.baseURL + cl.path
	if len(cl.query) > 0 {
		reqURL += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL, body)
	if err != nil {
		return fmt.Errorf("создание запроса %s: %w", cl.operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !cl.anonymous {
		token := cl.token
		if token == "" {
			token, err = c.tokenProvider(ctx)
			if err != nil {
				return fmt.Errorf("получение токена для %s: %w", cl.operation, err)
			}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiRequestDuration.WithLabelValues(cl.operation, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("запрос %s к %s: %w", cl.operation, c.baseURL, err)
	}
	defer resp.Body.Close()
	apiRequestDuration.WithLabelValues(cl.operation, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("API вернул ошибку",
			slog.String("operation", cl.operation),
			slog.Int("status", resp.StatusCode),
		)
		return &StatusError{
			Operation:  cl.operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("декодирование ответа %s: %w", cl.operation, err)
	}
	return nil
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}

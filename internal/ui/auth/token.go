package auth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken — подпись или срок действия токена не прошли проверку.
var ErrInvalidToken = errors.New("невалидный токен")

// TokenInfo — сведения, извлечённые из токена входа.
// Нулевое значение означает непрозрачный токен.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenInspector читает subject и срок действия токена, выданного API.
// Без JWKS токен разбирается без проверки подписи: его действительность
// всё равно подтверждает только API.
type TokenInspector struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewTokenInspector создаёт инспектор токенов.
// jwksURL — JWKS endpoint для проверки подписи (пустой — без проверки).
// caCertPath — CA-сертификат для TLS-соединения с JWKS (опционально).
func NewTokenInspector(jwksURL, caCertPath string, logger *slog.Logger) (*TokenInspector, error) {
	logger = logger.With(slog.String("component", "token_inspector"))
	if jwksURL == "" {
		return &TokenInspector{logger: logger}, nil
	}

	httpClient := http.DefaultClient
	if caCertPath != "" {
		var err error
		httpClient, err = httpClientWithCA(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата %s: %w", caCertPath, err)
		}
	}

	// NoErrorReturnFirstHTTPReq — стартуем даже если JWKS ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}
	return &TokenInspector{jwks: k, logger: logger}, nil
}

// NewTokenInspectorWithKeyfunc создаёт инспектор с предоставленной keyfunc.
// Используется в тестах для подстановки mock JWKS.
func NewTokenInspectorWithKeyfunc(kf keyfunc.Keyfunc, logger *slog.Logger) *TokenInspector {
	return &TokenInspector{
		jwks:   kf,
		logger: logger.With(slog.String("component", "token_inspector")),
	}
}

// Verifies сообщает, проверяется ли подпись токена.
func (i *TokenInspector) Verifies() bool {
	return i.jwks != nil
}

// Inspect возвращает сведения о токене.
// Без JWKS токен, не являющийся JWT, допустим и даёт нулевой TokenInfo.
func (i *TokenInspector) Inspect(ctx context.Context, token string) (TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}

	if i.jwks == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			i.logger.Debug("Токен не является JWT, срок действия неизвестен")
			return TokenInfo{}, nil
		}
		return tokenInfo(claims), nil
	}

	parsed, err := jwt.ParseWithClaims(token, claims, i.jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil || !parsed.Valid {
		i.logger.Debug("Проверка токена не пройдена", slog.Any("error", err))
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return tokenInfo(claims), nil
}

func tokenInfo(claims *jwt.RegisteredClaims) TokenInfo {
	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// httpClientWithCA создаёт HTTP-клиент с кастомным CA-сертификатом.
func httpClientWithCA(caCertPath string) (*http.Client, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, err
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: caCertPool,
			},
		},
	}, nil
}

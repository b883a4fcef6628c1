// liveness.go — фоновая проверка действительности токенов UI-сессий.
//
// LivenessService запускает горутину с ticker (PP_LIVENESS_INTERVAL), которая
// проверяет токены всех отслеживаемых сессий и отзывает те, что API отверг.
// Проверка не блокирует обработку запросов: состояние сессии меняется только
// через CredentialStore.
package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	livenessChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pp_liveness_checks_total",
		Help: "Количество проверок токенов сессий по результату",
	}, []string{"result"}) // result: ok, revoked
)

// maxLivenessConcurrency — максимальное число одновременных проверок.
const maxLivenessConcurrency = 5

// CredentialStore — хранилище токенов сессий.
type CredentialStore interface {
	// Credentials возвращает снимок токенов: id сессии → токен.
	Credentials() map[string]string
	// Revoke отзывает сессию.
	Revoke(sessionID string)
}

// Pinger проверяет токен запросом к API.
type Pinger interface {
	Ping(ctx context.Context, token string) error
}

// LivenessService — периодическая проверка токенов.
type LivenessService struct {
	store    CredentialStore
	pinger   Pinger
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLivenessService создаёт сервис проверки токенов.
func NewLivenessService(store CredentialStore, pinger Pinger, interval time.Duration, logger *slog.Logger) *LivenessService {
	return &LivenessService{
		store:    store,
		pinger:   pinger,
		interval: interval,
		logger:   logger.With(slog.String("component", "liveness")),
	}
}

// Start запускает фоновую горутину с периодической проверкой.
func (s *LivenessService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("Периодическая проверка токенов запущена",
			slog.String("interval", s.interval.String()),
		)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Периодическая проверка токенов остановлена")
				return
			case <-ticker.C:
				revoked := s.CheckAll(ctx)
				s.logger.Info("Проверка токенов завершена", slog.Int("revoked", revoked))
			}
		}
	}()
}

// Stop останавливает фоновую горутину и ждёт завершения.
func (s *LivenessService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// CheckAll проверяет все токены и возвращает число отозванных сессий.
// Любая ошибка проверки отзывает сессию, кроме отмены самого ctx.
func (s *LivenessService) CheckAll(ctx context.Context) int {
	creds := s.store.Credentials()
	if len(creds) == 0 {
		return 0
	}

	var revoked atomic.Int64
	var g errgroup.Group
	g.SetLimit(maxLivenessConcurrency)

	for sessionID, token := range creds {
		g.Go(func() error {
			err := s.pinger.Ping(ctx, token)
			if err == nil {
				livenessChecksTotal.WithLabelValues("ok").Inc()
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.store.Revoke(sessionID)
			revoked.Add(1)
			livenessChecksTotal.WithLabelValues("revoked").Inc()
			s.logger.Info("Сессия отозвана: токен не прошёл проверку",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			return nil
		})
	}
	_ = g.Wait()
	return int(revoked.Load())
}

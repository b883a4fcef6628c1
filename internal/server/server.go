// Пакет server — HTTP-сервер Production Plan UI с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/prodplan/internal/api/handlers"
	"github.com/bigkaa/prodplan/internal/api/middleware"
	"github.com/bigkaa/prodplan/internal/config"
	uihandlers "github.com/bigkaa/prodplan/internal/ui/handlers"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/static"
)

// Components — обработчики, из которых собирается маршрутизатор.
type Components struct {
	Health         *handlers.HealthHandler
	Auth           *uihandlers.AuthHandler
	AuthMiddleware *uimiddleware.UIAuth
	Videos         *uihandlers.VideosHandler
	Retention      *uihandlers.RetentionHandler
	// LoginRateLimit — попыток входа в минуту с одного IP, 0 — без лимита.
	LoginRateLimit int
}

// Server — HTTP-сервер Production Plan UI.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, c Components) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, c),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты:
//   - /health/live, /health/ready, /metrics — без сессии;
//   - /static/* — встроенные ресурсы;
//   - /ui/login, /ui/logout, /ui/set-language — без сессии;
//   - остальные /ui/* — за UIAuth.
func NewRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, uihandlers.HomePath, http.StatusFound)
	})

	router.Route("/ui", func(r chi.Router) {
		r.Use(i18n.Middleware())

		r.Get("/login", c.Auth.HandleLoginPage)
		r.Group(func(r chi.Router) {
			if c.LoginRateLimit > 0 {
				r.Use(middleware.LoginRateLimit(c.LoginRateLimit))
			}
			r.Post("/login", c.Auth.HandleLogin)
		})
		r.Post("/logout", c.Auth.HandleLogout)
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(c.AuthMiddleware.Middleware())

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, uihandlers.HomePath, http.StatusFound)
			})
			r.Get("/videos", c.Videos.HandleList)
			r.Get("/videos/new", c.Videos.HandleNew)
			r.Post("/videos", c.Videos.HandleCreate)
			r.Get("/videos/{id}/edit", c.Videos.HandleEdit)
			r.Post("/videos/{id}", c.Videos.HandleUpdate)
			r.Post("/videos/{id}/delete", c.Videos.HandleDelete)
			r.Get("/videos/{id}/tests", c.Videos.HandleTests)
			r.Post("/videos/{id}/tests", c.Videos.HandleTestsAction)

			r.Post("/selection/toggle", c.Videos.HandleToggle)
			r.Post("/selection/clear", c.Videos.HandleClear)
			r.Get("/bulk", c.Videos.HandleBulkForm)
			r.Post("/bulk", c.Videos.HandleBulkApply)

			r.Get("/retention", c.Retention.HandleReport)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}

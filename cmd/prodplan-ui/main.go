// Точка входа Production Plan UI — браузерного интерфейса производственного
// плана видео-компиляций. Загружает конфигурацию, создаёт клиент REST API,
// сервисный слой и UI-обработчики, запускает фоновые проверки (токены
// сессий, topologymetrics) и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/prodplan/internal/api/handlers"
	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/config"
	"github.com/bigkaa/prodplan/internal/contract"
	"github.com/bigkaa/prodplan/internal/retention"
	"github.com/bigkaa/prodplan/internal/server"
	"github.com/bigkaa/prodplan/internal/service"
	"github.com/bigkaa/prodplan/internal/ui/auth"
	uihandlers "github.com/bigkaa/prodplan/internal/ui/handlers"
	"github.com/bigkaa/prodplan/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/prodplan/internal/ui/middleware"
	"github.com/bigkaa/prodplan/internal/ui/state"
)

// retentionMemoSize — число наборов записей в кэше сводных таблиц.
const retentionMemoSize = 64

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Production Plan UI запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_url", cfg.APIURL),
	)

	// 3. Каталоги переводов
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// 4. Клиент REST API (опционально с проверкой тел по контракту)
	var opts []apiclient.Option
	if cfg.APIContractValidation {
		validator, vErr := contract.New(ctx)
		if vErr != nil {
			logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", vErr.Error()))
			os.Exit(1)
		}
		opts = append(opts, apiclient.WithValidator(validator))
		logger.Info("Проверка тел запросов по контракту включена",
			slog.String("contract_version", validator.Version()),
		)
	}
	client, err := apiclient.New(cfg.APIURL, cfg.APICACertPath, cfg.APITimeout, nil, logger, opts...)
	if err != nil {
		logger.Error("Ошибка создания клиента API", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Services
	directories := service.NewDirectoryCache(client, cfg.DirectoryCacheTTL, logger)
	videos := service.NewVideoService(client, directories, logger)

	// 6. Состояние UI-сессий и фоновая проверка токенов
	store := state.NewStore(cfg.SessionStateMax, cfg.SessionStateTTL, cfg.UIPaletteSize)
	liveness := service.NewLivenessService(store, client, cfg.LivenessInterval, logger)
	liveness.Start(ctx)

	// 7. topologymetrics — мониторинг REST API
	var dephealthSvc *service.DephealthService
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"prodplan-ui",
		cfg.DephealthGroup,
		cfg.APIURL,
		cfg.DephealthHealthPath,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 8. Readiness checker: результат dephealth или прямой запрос к API
	var source service.HealthSource
	if dephealthSvc != nil {
		source = dephealthSvc
	}
	healthHandler := handlers.NewHealthHandler(
		service.NewAPIReadinessChecker(source, cfg.APIURL, cfg.DephealthHealthPath, nil),
	)

	// 9. Сессии UI
	sessionMgr, err := auth.NewSessionManager(cfg.UISessionSecret, cfg.UISecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.UISessionSecret == "" {
		logger.Warn("PP_UI_SESSION_SECRET не задан, UI-сессии не сохраняются между рестартами")
	}
	inspector, err := auth.NewTokenInspector(cfg.APIJWKSURL, cfg.APICACertPath, logger)
	if err != nil {
		logger.Error("Ошибка создания инспектора токенов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	uiAuth := uimiddleware.NewUIAuth(sessionMgr, store, logger)

	// 10. UI handlers
	memo, err := retention.NewMemo(retentionMemoSize)
	if err != nil {
		logger.Error("Ошибка создания кэша отчёта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	components := server.Components{
		Health:         healthHandler,
		Auth:           uihandlers.NewAuthHandler(client, inspector, sessionMgr, store, uiAuth, logger),
		AuthMiddleware: uiAuth,
		Videos:         uihandlers.NewVideosHandler(videos, uiAuth, cfg.UIPageSize, cfg.RetentionKey, logger),
		Retention:      uihandlers.NewRetentionHandler(videos, memo, cfg.RetentionKey, cfg.UIPageSize, uiAuth, logger),
		LoginRateLimit: cfg.LoginRateLimit,
	}
	logger.Info("UI инициализирован",
		slog.Int("page_size", cfg.UIPageSize),
		slog.String("retention_key", string(cfg.RetentionKey)),
		slog.Bool("token_verification", inspector.Verifies()),
	)

	// 11. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, components)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Остановка фоновых задач
	logger.Info("Останавливаем фоновые задачи...")
	liveness.Stop()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Production Plan UI остановлен")
}

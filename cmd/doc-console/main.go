// Точка входа doc-console — веб-консоль управления документами.
// Загружает конфигурацию, создаёт клиенты document-service и user-service,
// менеджер сессий и каталоги переводов, запускает topologymetrics и
// HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aventuscto/doc-console/internal/api/handlers"
	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/config"
	"github.com/aventuscto/doc-console/internal/docservice"
	"github.com/aventuscto/doc-console/internal/server"
	"github.com/aventuscto/doc-console/internal/service"
	"github.com/aventuscto/doc-console/internal/session"
	"github.com/aventuscto/doc-console/internal/ui/auth"
	uihandlers "github.com/aventuscto/doc-console/internal/ui/handlers"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
	uimiddleware "github.com/aventuscto/doc-console/internal/ui/middleware"
	"github.com/aventuscto/doc-console/internal/userservice"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("doc-console запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Клиенты backend-сервисов.
	// Токен берётся из сессии текущего запроса; 401/403 закрывает сессию.
	clientOpts := []apiclient.Option{
		apiclient.WithCACert(cfg.CACertPath),
		apiclient.WithTimeout(cfg.BackendTimeout),
		apiclient.WithUnauthorizedHandler(session.LogoutFromContext),
		apiclient.WithLogger(logger),
	}

	docsAPI, err := apiclient.New(apiclient.ServiceDocuments, cfg.DocumentServiceURL, session.ContextTokens, clientOpts...)
	if err != nil {
		logger.Error("Ошибка создания клиента document-service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	usersAPI, err := apiclient.New(apiclient.ServiceUsers, cfg.UserServiceURL, session.ContextTokens, clientOpts...)
	if err != nil {
		logger.Error("Ошибка создания клиента user-service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var tagCache *docservice.TagCache
	if cfg.TagCacheSize > 0 {
		tagCache = docservice.NewTagCache(cfg.TagCacheSize, cfg.TagCacheTTL)
	}
	docs := docservice.New(docsAPI, cfg.UploadsBaseURL, tagCache, logger)
	users := userservice.New(usersAPI, cfg.LoginPath, logger)

	// 4. Session Manager — шифрование сессий в cookie (AES-256-GCM)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionSecure)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("DC_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 5. Каталоги переводов
	bundle, err := i18n.Load(logger)
	if err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. topologymetrics — мониторинг backend-сервисов и readiness
	ctx := context.Background()
	var docsChecker, usersChecker handlers.ReadinessChecker
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "doc-console",
		Group:         cfg.DephealthGroup,
		Documents:     service.Backend{URL: cfg.DocumentServiceURL, HealthPath: cfg.DocumentServiceHealthPath},
		Users:         service.Backend{URL: cfg.UserServiceURL, HealthPath: cfg.UserServiceHealthPath},
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		docsChecker = dephealthSvc.Checker(service.DepDocumentService)
		usersChecker = dephealthSvc.Checker(service.DepUserService)
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 7. Обработчики
	components := server.Components{
		Health:    handlers.NewHealthHandler(docsChecker, usersChecker),
		Bundle:    bundle,
		Auth:      uimiddleware.NewUIAuth(sessionMgr, logger),
		Login:     uihandlers.NewAuthHandler(users, logger),
		Dashboard: uihandlers.NewDashboardHandler(docs, logger),
		Search:    uihandlers.NewSearchHandler(docs, logger),
		Tags:      uihandlers.NewTagsHandler(docs, logger),
		Access:    uihandlers.NewAccessHandler(users, logger),
	}

	// 8. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, components)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Остановка фоновых задач
	if dephealthErr == nil {
		dephealthSvc.Stop()
	}

	logger.Info("doc-console остановлен")
}

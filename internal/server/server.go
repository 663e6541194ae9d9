// Пакет server — HTTP-сервер doc-console с graceful shutdown.
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

	"github.com/aventuscto/doc-console/internal/api/handlers"
	"github.com/aventuscto/doc-console/internal/api/middleware"
	"github.com/aventuscto/doc-console/internal/config"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
	uihandlers "github.com/aventuscto/doc-console/internal/ui/handlers"
	uimiddleware "github.com/aventuscto/doc-console/internal/ui/middleware"
	"github.com/aventuscto/doc-console/internal/ui/static"
)

// Components — обработчики и middleware, из которых собирается роутер.
type Components struct {
	Health    *handlers.HealthHandler
	Bundle    *i18n.Bundle
	Auth      *uimiddleware.UIAuth
	Login     *uihandlers.AuthHandler
	Dashboard *uihandlers.DashboardHandler
	Search    *uihandlers.SearchHandler
	Tags      *uihandlers.TagsHandler
	Access    *uihandlers.AccessHandler
}

// Server — HTTP-сервер doc-console.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
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

// NewRouter собирает chi-роутер консоли.
// Health, metrics, статика и страница входа доступны без сессии,
// остальные страницы требуют действующей сессии.
func NewRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Kubernetes probes и Prometheus
	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(c.Bundle))
		r.Use(c.Auth.Session())

		r.Get(uimiddleware.LoginPath, c.Login.HandleLoginPage)
		r.Post(uimiddleware.LoginPath, c.Login.HandleLogin)
		r.Post("/set-language", uihandlers.HandleSetLanguage(c.Bundle))

		r.Group(func(r chi.Router) {
			r.Use(c.Auth.RequireSession())

			r.Post("/logout", c.Login.HandleLogout)

			r.Get("/", c.Dashboard.HandleDashboard)
			r.Post("/documents", c.Dashboard.HandleUpload)
			r.Get("/search", c.Search.HandleSearch)

			r.Get("/tags", c.Tags.HandleTags)
			r.Post("/tags", c.Tags.HandleCreateTag)

			r.Get("/users", c.Access.HandleUsers)
			r.Post("/users", c.Access.HandleCreateUser)
			r.Get("/groups", c.Access.HandleGroups)
			r.Post("/groups", c.Access.HandleCreateGroup)
			r.Get("/roles", c.Access.HandleRoles)
			r.Post("/roles", c.Access.HandleCreateRole)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}

// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// doc-console мониторит два backend-сервиса HTTP-проверками:
//   - document-service (critical)
//   - user-service (critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для backend-сервисов
	"github.com/prometheus/client_golang/prometheus"
)

// Имена зависимостей в метриках topologymetrics.
const (
	DepDocumentService = "document-service"
	DepUserService     = "user-service"
)

// Backend — описание проверяемого backend-сервиса.
type Backend struct {
	// URL — базовый URL сервиса
	URL string
	// HealthPath — путь, отвечающий 2xx при доступности сервиса
	HealthPath string
}

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	// Group — имя группы в метриках
	Group string
	// Documents — document-service
	Documents Backend
	// Users — user-service
	Users Backend
	// CheckInterval — интервал проверки
	CheckInterval time.Duration
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	cfg DephealthConfig,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(
	cfg DephealthConfig,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		httpDependency(DepDocumentService, cfg.Documents, cfg.CheckInterval),
		httpDependency(DepUserService, cfg.Users, cfg.CheckInterval),
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// httpDependency описывает HTTP-проверку одного backend.
func httpDependency(name string, b Backend, interval time.Duration) dephealth.Option {
	healthPath := b.HealthPath
	if healthPath == "" {
		healthPath = "/"
	}
	return dephealth.HTTP(name,
		dephealth.FromURL(b.URL),
		dephealth.WithHTTPHealthPath(healthPath),
		dephealth.CheckInterval(interval),
		dephealth.Critical(true),
	)
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (document-service + user-service)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — "dependency:host:port", значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// Checker возвращает проверку готовности одной зависимости для /health/ready.
func (ds *DephealthService) Checker(name string) *DependencyChecker {
	return &DependencyChecker{name: name, health: ds.Health}
}

// DependencyChecker — проверка готовности зависимости по последнему
// результату topologymetrics.
type DependencyChecker struct {
	name   string
	health func() map[string]bool
}

// CheckReady возвращает "ok" или "fail" с сообщением.
func (c *DependencyChecker) CheckReady() (string, string) {
	ok, found := findHealthByPrefix(c.health(), c.name)
	switch {
	case !found:
		return "fail", "проверка ещё не выполнялась"
	case !ok:
		return "fail", c.name + " недоступен"
	default:
		return "ok", ""
	}
}

// findHealthByPrefix ищет статус зависимости по префиксу имени.
// Health() возвращает ключи формата "dependency:host:port".
// Если найдено несколько — ok только если все healthy.
func findHealthByPrefix(health map[string]bool, prefix string) (ok bool, found bool) {
	ok = true
	for key, healthy := range health {
		if strings.HasPrefix(key, prefix+":") || key == prefix {
			found = true
			if !healthy {
				ok = false
			}
		}
	}
	return ok && found, found
}

// Пакет config — загрузка и валидация конфигурации doc-console
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации веб-консоли.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Backend-сервисы ---

	// Базовый URL document-service
	DocumentServiceURL string
	// Базовый URL user-service
	UserServiceURL string
	// Путь получения токена в user-service
	LoginPath string
	// Базовый URL статической раздачи загруженных файлов
	UploadsBaseURL string
	// Путь к CA-сертификату для TLS-соединений с backend (опционально)
	CACertPath string
	// Таймаут запроса к backend (0 — без таймаута)
	BackendTimeout time.Duration

	// --- Сессия ---

	// Ключ шифрования cookie сессии (пустой — случайный при старте)
	SessionSecret string
	// Secure flag для cookie (true за HTTPS)
	SessionSecure bool

	// --- Кэш определений тегов ---

	// Максимальное число учётных данных в кэше (0 — кэш выключен)
	TagCacheSize int
	// Время жизни записи кэша
	TagCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Путь health-check document-service
	DocumentServiceHealthPath string
	// Путь health-check user-service
	UserServiceHealthPath string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// DC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("DC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// DC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DC_LOG_LEVEL: %w", err)
	}

	// DC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Backend-сервисы ---

	// DC_DOCUMENT_SERVICE_URL — обязательный
	cfg.DocumentServiceURL, err = getEnvURL("DC_DOCUMENT_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	// DC_USER_SERVICE_URL — обязательный
	cfg.UserServiceURL, err = getEnvURL("DC_USER_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	// DC_LOGIN_PATH — путь получения токена (по умолчанию /token)
	cfg.LoginPath = getEnvDefault("DC_LOGIN_PATH", "/token")
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return nil, fmt.Errorf("DC_LOGIN_PATH: путь должен начинаться с /: %q", cfg.LoginPath)
	}

	// DC_UPLOADS_BASE_URL — раздача загруженных файлов
	cfg.UploadsBaseURL = getEnvDefault("DC_UPLOADS_BASE_URL", "http://127.0.0.1:8000/uploads/")

	// DC_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.CACertPath = getEnvDefault("DC_CA_CERT_PATH", "")

	// DC_BACKEND_TIMEOUT — таймаут запроса к backend (по умолчанию без таймаута)
	cfg.BackendTimeout, err = getEnvDuration("DC_BACKEND_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("DC_BACKEND_TIMEOUT: %w", err)
	}

	// --- Сессия ---

	// DC_SESSION_SECRET — ключ шифрования cookie (опционально)
	cfg.SessionSecret = getEnvDefault("DC_SESSION_SECRET", "")

	// DC_SESSION_SECURE — Secure flag cookie (по умолчанию false)
	cfg.SessionSecure, err = getEnvBool("DC_SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("DC_SESSION_SECURE: %w", err)
	}

	// --- Кэш определений тегов ---

	// DC_TAG_CACHE_SIZE — размер кэша (по умолчанию 256)
	cfg.TagCacheSize, err = getEnvInt("DC_TAG_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("DC_TAG_CACHE_SIZE: %w", err)
	}
	if cfg.TagCacheSize < 0 {
		return nil, fmt.Errorf("DC_TAG_CACHE_SIZE: значение %d не может быть отрицательным", cfg.TagCacheSize)
	}

	// DC_TAG_CACHE_TTL — время жизни записи кэша (по умолчанию 1m)
	cfg.TagCacheTTL, err = getEnvDuration("DC_TAG_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DC_TAG_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// DC_DEPHEALTH_GROUP — группа в метриках (по умолчанию doc-console)
	cfg.DephealthGroup = getEnvDefault("DC_DEPHEALTH_GROUP", "doc-console")

	// DC_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("DC_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DC_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// DC_DOCUMENT_SERVICE_HEALTH_PATH, DC_USER_SERVICE_HEALTH_PATH (по умолчанию /docs)
	cfg.DocumentServiceHealthPath = getEnvDefault("DC_DOCUMENT_SERVICE_HEALTH_PATH", "/docs")
	cfg.UserServiceHealthPath = getEnvDefault("DC_USER_SERVICE_HEALTH_PATH", "/docs")

	// --- Graceful shutdown ---

	// DC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("DC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvURL возвращает обязательный абсолютный URL без trailing slash.
func getEnvURL(key string) (string, error) {
	val, err := getEnvRequired(key)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(val)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s: некорректный URL %q (ожидается http(s)://host[:port])", key, val)
	}
	return strings.TrimRight(val, "/"), nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (true/false)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

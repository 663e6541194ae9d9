package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aventuscto/doc-console/internal/session"
)

// Значения конфигурации по умолчанию.
const (
	DefaultDocumentServiceURL = "http://127.0.0.1:8000"
	DefaultUserServiceURL     = "http://127.0.0.1:8001"
	DefaultLoginPath          = "/token"
	DefaultTimeout            = 30 * time.Second
)

// Config — настройки docctl из YAML-файла.
type Config struct {
	DocumentServiceURL string `yaml:"document_service_url"`
	UserServiceURL     string `yaml:"user_service_url"`
	LoginPath          string `yaml:"login_path"`
	// UploadsBaseURL — раздача загруженных файлов (пусто — {document_service_url}/uploads/)
	UploadsBaseURL string `yaml:"uploads_base_url"`
	CACertPath     string `yaml:"ca_cert_path"`
	// Timeout — таймаут запроса к backend, например "30s"
	Timeout     string `yaml:"timeout"`
	SessionFile string `yaml:"session_file"`
	LogLevel    string `yaml:"log_level"`
}

// DefaultConfigPath возвращает путь конфигурации: DOCCTL_CONFIG или
// $XDG_CONFIG_HOME/doc-console/config.yaml (~/.config по умолчанию).
func DefaultConfigPath() string {
	if envPath := os.Getenv("DOCCTL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "doc-console", "config.yaml")
}

// LoadConfig читает конфигурацию из path. Отсутствующий файл —
// конфигурация по умолчанию.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("конфигурация %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DocumentServiceURL == "" {
		c.DocumentServiceURL = DefaultDocumentServiceURL
	}
	if c.UserServiceURL == "" {
		c.UserServiceURL = DefaultUserServiceURL
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	if c.SessionFile == "" {
		c.SessionFile = session.DefaultFilePath()
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate проверяет значения конфигурации.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.LoginPath, "/") {
		return fmt.Errorf("login_path должен начинаться с /: %q", c.LoginPath)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// RequestTimeout возвращает таймаут запроса (пусто — DefaultTimeout).
func (c Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout: отрицательное значение %s", d)
	}
	return d, nil
}

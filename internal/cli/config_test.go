package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Missing(t *testing.T) {
	t.Setenv("DOCCTL_SESSION_FILE", "/tmp/docctl-session.json")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDocumentServiceURL, cfg.DocumentServiceURL)
	assert.Equal(t, DefaultUserServiceURL, cfg.UserServiceURL)
	assert.Equal(t, DefaultLoginPath, cfg.LoginPath)
	assert.Equal(t, "/tmp/docctl-session.json", cfg.SessionFile)
	assert.Equal(t, "warn", cfg.LogLevel)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, timeout)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
document_service_url: https://docs.example.com
user_service_url: https://users.example.com
login_path: /auth/token
uploads_base_url: https://files.example.com/uploads/
timeout: 5s
session_file: /var/lib/docctl/session.json
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://docs.example.com", cfg.DocumentServiceURL)
	assert.Equal(t, "https://users.example.com", cfg.UserServiceURL)
	assert.Equal(t, "/auth/token", cfg.LoginPath)
	assert.Equal(t, "https://files.example.com/uploads/", cfg.UploadsBaseURL)
	assert.Equal(t, "/var/lib/docctl/session.json", cfg.SessionFile)
	assert.Equal(t, "debug", cfg.LogLevel)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"синтаксис", "document_service_url: [unterminated"},
		{"таймаут", "timeout: soon"},
		{"отрицательный таймаут", "timeout: -1s"},
		{"путь входа", "login_path: token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("DOCCTL_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/doc-console/config.yaml", DefaultConfigPath())

	t.Setenv("DOCCTL_CONFIG", "/etc/docctl.yaml")
	assert.Equal(t, "/etc/docctl.yaml", DefaultConfigPath())
}

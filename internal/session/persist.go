package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// DefaultFilePath возвращает путь файла сессии CLI.
// Сначала проверяется DOCCTL_SESSION_FILE, затем
// $XDG_CONFIG_HOME/doc-console/session.json (~/.config по умолчанию).
func DefaultFilePath() string {
	if envPath := os.Getenv("DOCCTL_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "doc-console-session.json")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "doc-console", "session.json")
}

// FilePersister хранит учётные данные в JSON-файле (режим 0600, каталог 0700).
type FilePersister struct {
	Path string
}

// Load читает файл сессии. Отсутствие файла — не ошибка.
func (p FilePersister) Load() (*model.Credential, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение файла сессии %s: %w", p.Path, err)
	}

	var cred model.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("разбор файла сессии %s: %w", p.Path, err)
	}
	return &cred, nil
}

// Save записывает файл сессии, создавая каталог при необходимости.
func (p FilePersister) Save(cred model.Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация сессии: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("создание каталога сессии %s: %w", dir, err)
	}

	// Запись через временный файл: прерванная запись не портит сессию
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("создание временного файла сессии: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("установка прав файла сессии: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись файла сессии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("запись файла сессии: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.Path); err != nil {
		return fmt.Errorf("сохранение файла сессии %s: %w", p.Path, err)
	}
	return nil
}

// Clear удаляет файл сессии. Отсутствие файла — не ошибка.
func (p FilePersister) Clear() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("удаление файла сессии %s: %w", p.Path, err)
	}
	return nil
}

// MemoryPersister хранит учётные данные в памяти процесса.
type MemoryPersister struct {
	mu   sync.Mutex
	cred *model.Credential
}

// Load возвращает копию сохранённых учётных данных.
func (p *MemoryPersister) Load() (*model.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cred == nil {
		return nil, nil
	}
	c := *p.cred
	return &c, nil
}

// Save сохраняет учётные данные.
func (p *MemoryPersister) Save(cred model.Credential) error {
	p.mu.Lock()
	p.cred = &cred
	p.mu.Unlock()
	return nil
}

// Clear удаляет учётные данные.
func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	p.cred = nil
	p.mu.Unlock()
	return nil
}

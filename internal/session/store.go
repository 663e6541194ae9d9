// Пакет session — хранилище учётных данных текущей сессии.
// Store — единственный источник bearer-токена для apiclient: реализует
// apiclient.TokenSource и уведомляет подписчиков о login/logout.
// Долговременное хранение вынесено в Persister (файл для CLI,
// зашифрованная cookie для веб-консоли).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// ErrEmptyToken — попытка входа с пустым токеном.
var ErrEmptyToken = errors.New("пустой токен")

// Persister — долговременное хранилище учётных данных.
type Persister interface {
	// Load возвращает сохранённые учётные данные или nil, если их нет.
	Load() (*model.Credential, error)
	// Save сохраняет учётные данные.
	Save(cred model.Credential) error
	// Clear удаляет сохранённые учётные данные.
	Clear() error
}

// Listener получает новое состояние сессии (nil — сессии нет).
type Listener func(cred *model.Credential)

// Store — хранилище учётных данных текущей сессии.
// Безопасно для конкурентного использования.
type Store struct {
	mu        sync.RWMutex
	cred      *model.Credential
	persister Persister
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
	logger    *slog.Logger
}

// NewStore создаёт пустое хранилище. p может быть nil — тогда сессия
// живёт только в памяти.
func NewStore(p Persister, logger *slog.Logger) *Store {
	if p == nil {
		p = &MemoryPersister{}
	}
	return &Store{
		persister: p,
		listeners: make(map[int]Listener),
		now:       time.Now,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// Login сохраняет учётные данные и уведомляет подписчиков.
// При ошибке сохранения состояние не меняется.
func (s *Store) Login(cred model.Credential) error {
	if cred.Token == "" {
		return ErrEmptyToken
	}
	if cred.DisplayName == "" {
		cred.DisplayName = model.DefaultDisplayName
	}

	s.mu.Lock()
	if err := s.persister.Save(cred); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	s.cred = &cred
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("Сессия открыта", slog.String("user", cred.DisplayName))
	notify(listeners, &cred)
	return nil
}

// Logout удаляет учётные данные из памяти и хранилища.
// Память очищается даже при ошибке хранилища.
func (s *Store) Logout() error {
	s.mu.Lock()
	wasAuthenticated := s.cred != nil
	s.cred = nil
	err := s.persister.Clear()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if wasAuthenticated {
		s.logger.Info("Сессия закрыта")
		notify(listeners, nil)
	}
	if err != nil {
		return fmt.Errorf("очистка сессии: %w", err)
	}
	return nil
}

// Restore загружает учётные данные из хранилища.
// Пустые или истёкшие учётные данные удаляются: сессии нет.
func (s *Store) Restore() error {
	s.mu.Lock()
	loaded, err := s.persister.Load()
	if err != nil {
		s.cred = nil
		s.mu.Unlock()
		return fmt.Errorf("загрузка сессии: %w", err)
	}

	switch {
	case loaded == nil:
		s.cred = nil
	case loaded.Token == "" || loaded.IsExpired(s.now()):
		s.logger.Info("Сохранённая сессия недействительна, удаляется",
			slog.Time("expires_at", loaded.ExpiresAt),
		)
		s.cred = nil
		if err := s.persister.Clear(); err != nil {
			s.logger.Warn("Не удалось удалить сохранённую сессию", slog.String("error", err.Error()))
		}
	default:
		if loaded.DisplayName == "" {
			loaded.DisplayName = model.DefaultDisplayName
		}
		s.cred = loaded
	}

	var current *model.Credential
	if s.cred != nil {
		c := *s.cred
		current = &c
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, current)
	return nil
}

// Credential возвращает копию текущих учётных данных.
func (s *Store) Credential() (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil || s.cred.IsExpired(s.now()) {
		return model.Credential{}, false
	}
	return *s.cred, true
}

// Authenticated сообщает, есть ли действующая сессия.
func (s *Store) Authenticated() bool {
	_, ok := s.Credential()
	return ok
}

// Token реализует apiclient.TokenSource.
func (s *Store) Token(context.Context) string {
	cred, ok := s.Credential()
	if !ok {
		return ""
	}
	return cred.Token
}

// Subscribe регистрирует подписчика на изменения сессии.
// Возвращает функцию отписки.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners копирует подписчиков. Вызывается под s.mu.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// notify вызывает подписчиков вне блокировки.
func notify(listeners []Listener, cred *model.Credential) {
	for _, fn := range listeners {
		var c *model.Credential
		if cred != nil {
			copied := *cred
			c = &copied
		}
		fn(c)
	}
}

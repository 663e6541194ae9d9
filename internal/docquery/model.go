package docquery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// Lister — источник документов (docservice.Client).
type Lister interface {
	ListDocuments(ctx context.Context, query url.Values) ([]model.Document, error)
}

// Model — состояние экрана поиска: последний фильтр и результаты.
// Результаты заменяются только успешным поиском; порядок — как у backend.
type Model struct {
	lister Lister
	logger *slog.Logger

	mu       sync.Mutex
	filter   Filter
	results  []model.Document
	searched bool
	inFlight int
	// generation — номер последнего запущенного поиска;
	// ответ более старого поиска не перезаписывает результаты нового
	generation uint64
}

// New создаёт модель поиска.
func New(lister Lister, logger *slog.Logger) *Model {
	return &Model{
		lister: lister,
		logger: logger.With(slog.String("component", "doc_query")),
	}
}

// Search выполняет поиск по фильтру.
// При ошибке или отмене ctx результаты не меняются, ошибка возвращается.
func (m *Model) Search(ctx context.Context, f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.filter = f
	m.generation++
	gen := m.generation
	m.inFlight++
	m.mu.Unlock()

	docs, err := m.lister.ListDocuments(ctx, f.Values())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--

	if err != nil {
		m.logger.Warn("Ошибка поиска документов", slog.String("error", err.Error()))
		return fmt.Errorf("поиск документов: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("поиск документов: %w", err)
	}
	if gen != m.generation {
		m.logger.Debug("Результат устаревшего поиска отброшен")
		return nil
	}

	m.results = docs
	m.searched = true
	return nil
}

// Reset очищает поля фильтра без повторного поиска.
func (m *Model) Reset() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = Filter{}
	return m.filter
}

// Filter возвращает текущий фильтр.
func (m *Model) Filter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Results возвращает копию текущих результатов.
func (m *Model) Results() []model.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.results)
}

// Searched сообщает, был ли хотя бы один успешный поиск.
func (m *Model) Searched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searched
}

// Loading сообщает, выполняется ли поиск.
func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight > 0
}

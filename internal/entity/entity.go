// Пакет entity — модели списков и форм создания сущностей консоли:
// пользователи, группы, роли, мета-теги и загрузка документов.
//
// Каждая модель загружает свой список вместе со справочником, нужным для
// формы создания (группы для пользователей, роли для групп и т.д.).
// Список и справочник применяются только вместе: частичный ответ
// считается ошибкой, а модель сохраняет последнюю согласованную пару.
package entity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrValidation — не заполнены обязательные поля формы. Запрос не отправляется.
var ErrValidation = errors.New("не заполнены обязательные поля")

// ValidationError перечисляет незаполненные поля формы.
type ValidationError struct {
	Fields []string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Fields, ", "))
}

// Is сопоставляет ошибку с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Message — текст для показа пользователю.
func (e *ValidationError) Message() string {
	return "Required: " + strings.Join(e.Fields, ", ")
}

// required возвращает *ValidationError для пустых полей или nil.
// Пары: имя поля, значение.
func required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing}
}

// Selection — упорядоченное множество выбранных id (порядок выбора).
type Selection struct {
	ids []int
}

// Toggle добавляет id, если его нет, иначе удаляет.
// Возвращает true, если id выбран после вызова.
func (s *Selection) Toggle(id int) bool {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Has сообщает, выбран ли id.
func (s *Selection) Has(id int) bool {
	return slices.Contains(s.ids, id)
}

// IDs возвращает копию выбранных id; пустой выбор — пустой (не nil) срез.
func (s *Selection) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clear снимает выбор.
func (s *Selection) Clear() {
	s.ids = nil
}

// State — снимок состояния модели для отображения.
type State[T, D, F any] struct {
	// Items — список сущностей
	Items []T
	// Deps — справочник для формы создания
	Deps []D
	// Form — поля формы создания
	Form F
	// Selected — выбранные id справочника
	Selected []int
	// Message — сообщение об ошибке создания
	Message string
	// Notice — сообщение об успешном действии
	Notice string
	// Err — ошибка последнего обновления списка
	Err error
	// Loaded — была ли хотя бы одна согласованная загрузка
	Loaded bool
}

// IsSelected сообщает, выбран ли id (для шаблонов).
func (s State[T, D, F]) IsSelected(id int) bool {
	return slices.Contains(s.Selected, id)
}

// base — общее состояние моделей: список, справочник, форма, выбор.
type base[T, D, F any] struct {
	mu       sync.Mutex
	items    []T
	deps     []D
	err      error
	loaded   bool
	form     F
	selected Selection
	message  string
	notice   string
}

// fetchFunc загружает список.
type fetchFunc[E any] func(ctx context.Context) ([]E, error)

// refresh параллельно загружает список и справочник и применяет их вместе.
// depsFn может быть nil — модель без справочника.
func (b *base[T, D, F]) refresh(ctx context.Context, listFn fetchFunc[T], depsFn fetchFunc[D]) error {
	var (
		items []T
		deps  []D
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = listFn(gctx)
		return err
	})
	if depsFn != nil {
		g.Go(func() error {
			var err error
			deps, err = depsFn(gctx)
			return err
		})
	}

	err := g.Wait()
	if err == nil {
		// Владелец модели ушёл, пока запросы были в полёте
		err = ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.err = err
		return err
	}
	b.items, b.deps, b.err, b.loaded = items, deps, nil, true
	return nil
}

// State возвращает снимок состояния.
func (b *base[T, D, F]) State() State[T, D, F] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State[T, D, F]{
		Items:    slices.Clone(b.items),
		Deps:     slices.Clone(b.deps),
		Form:     b.form,
		Selected: b.selected.IDs(),
		Message:  b.message,
		Notice:   b.notice,
		Err:      b.err,
		Loaded:   b.loaded,
	}
}

// SetForm задаёт поля формы создания.
func (b *base[T, D, F]) SetForm(form F) {
	b.mu.Lock()
	b.form = form
	b.mu.Unlock()
}

// Form возвращает поля формы создания.
func (b *base[T, D, F]) Form() F {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}

// Err возвращает ошибку последнего обновления.
func (b *base[T, D, F]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Message возвращает сообщение об ошибке создания.
func (b *base[T, D, F]) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

func (b *base[T, D, F]) toggle(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected.Toggle(id)
}

// snapshot возвращает форму и выбранные id для отправки.
func (b *base[T, D, F]) snapshot() (F, []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message, b.notice = "", ""
	return b.form, b.selected.IDs()
}

func (b *base[T, D, F]) fail(message string) {
	b.mu.Lock()
	b.message = message
	b.mu.Unlock()
}

// succeed очищает форму и выбор после успешного создания.
func (b *base[T, D, F]) succeed(notice string) {
	b.mu.Lock()
	var zero F
	b.form = zero
	b.selected.Clear()
	b.message = ""
	b.notice = notice
	b.mu.Unlock()
}

// validationMessage — текст ошибки валидации для пользователя.
func validationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	return err.Error()
}

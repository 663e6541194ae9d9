// Пакет tagedit — модель редактора значений мета-тегов для загрузки документа.
// Редактор хранит не более одной записи на определение тега и отдаёт
// значения в виде JSON-объекта {"<id>": "<value>"}.
package tagedit

import (
	"iter"
	"slices"
	"sync"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// Entry — значение тега в редакторе.
type Entry struct {
	TagDefinitionID int
	Value           string
}

// Payload — значения тегов для отправки: id определения → значение.
// encoding/json сериализует int-ключи как строки: {"1": "HR"}.
type Payload map[int]string

// Editor — редактор значений тегов. Порядок записей — порядок добавления.
// Безопасен для конкурентного использования.
type Editor struct {
	mu      sync.Mutex
	entries []Entry
}

// New создаёт пустой редактор.
func New() *Editor {
	return &Editor{}
}

// AddTag добавляет запись с пустым значением.
// Возвращает false, если запись для id уже есть (редактор не меняется).
func (e *Editor) AddTag(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexLocked(id) >= 0 {
		return false
	}
	e.entries = append(e.entries, Entry{TagDefinitionID: id})
	return true
}

// SetValue задаёт значение записи. Для отсутствующего id ничего не делает
// и возвращает false. Значение не обрезается и может быть пустым.
func (e *Editor) SetValue(id int, value string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexLocked(id)
	if i < 0 {
		return false
	}
	e.entries[i].Value = value
	return true
}

// RemoveTag удаляет запись. Отсутствующий id — не ошибка.
func (e *Editor) RemoveTag(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = slices.DeleteFunc(e.entries, func(en Entry) bool {
		return en.TagDefinitionID == id
	})
}

// AvailableDefinitions возвращает определения из all, для которых ещё нет записи,
// в порядке all. Последовательность ленивая и перечитывает состояние
// редактора при каждом обходе.
func (e *Editor) AvailableDefinitions(all []model.TagDefinition) iter.Seq[model.TagDefinition] {
	return func(yield func(model.TagDefinition) bool) {
		for _, def := range all {
			if e.Has(def.ID) {
				continue
			}
			if !yield(def) {
				return
			}
		}
	}
}

// ToSubmissionPayload возвращает значения всех записей, включая пустые.
func (e *Editor) ToSubmissionPayload() Payload {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload := make(Payload, len(e.entries))
	for _, en := range e.entries {
		payload[en.TagDefinitionID] = en.Value
	}
	return payload
}

// Reset удаляет все записи (после успешной загрузки).
func (e *Editor) Reset() {
	e.mu.Lock()
	e.entries = nil
	e.mu.Unlock()
}

// Entries возвращает копию записей в порядке добавления.
func (e *Editor) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.entries)
}

// Len возвращает количество записей.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Has сообщает, есть ли запись для id.
func (e *Editor) Has(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexLocked(id) >= 0
}

func (e *Editor) indexLocked(id int) int {
	return slices.IndexFunc(e.entries, func(en Entry) bool {
		return en.TagDefinitionID == id
	})
}

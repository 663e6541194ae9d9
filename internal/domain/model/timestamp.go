package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts — форматы времени, которые встречаются в ответах backend.
// Сервисы отдают как RFC 3339, так и naive-время без зоны (трактуется как UTC).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp — время из JSON-ответа backend с терпимым разбором формата.
type Timestamp struct {
	time.Time
	// Raw — строка backend, если её не удалось разобрать (Time при этом нулевое)
	Raw string
}

// UnmarshalJSON разбирает строку времени в одном из timestampLayouts.
// null и пустая строка дают нулевое время. Строка в неизвестном формате
// сохраняется в Raw: один документ не должен ломать разбор всего списка.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time, t.Raw = time.Time{}, ""
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: ожидалась строка: %w", err)
	}
	if raw == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Raw = raw
	return nil
}

// Display возвращает время в UTC в формате time.DateTime, иначе строку
// backend как есть; пустая строка, если времени нет.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return t.Raw
	}
	return t.UTC().Format(time.DateTime)
}

// MarshalJSON сериализует время в RFC 3339, неразобранное значение — как есть.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		if t.Raw != "" {
			return json.Marshal(t.Raw)
		}
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

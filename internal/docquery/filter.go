// Пакет docquery — модель поиска документов: фильтр → query-параметры
// GET /documents/ и текущий набор результатов.
package docquery

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DateLayout — формат дат фильтра.
const DateLayout = time.DateOnly

// ErrInvalidFilter — фильтр содержит некорректные даты.
var ErrInvalidFilter = errors.New("некорректный фильтр")

// Filter — параметры поиска. Пустое поле — нет ограничения.
type Filter struct {
	// Filename — подстрока имени файла
	Filename string
	// Tag — текст значения тега
	Tag string
	// StartDate — начало диапазона загрузки, YYYY-MM-DD
	StartDate string
	// EndDate — конец диапазона загрузки, YYYY-MM-DD
	EndDate string
}

// FilterFromValues читает фильтр из query-параметров (форма поиска).
func FilterFromValues(v url.Values) Filter {
	return Filter{
		Filename:  v.Get("filename"),
		Tag:       v.Get("tag"),
		StartDate: v.Get("start_date"),
		EndDate:   v.Get("end_date"),
	}
}

// Values возвращает query-параметры только для непустых полей.
// Значения передаются как введены, без обрезки пробелов.
func (f Filter) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("filename", f.Filename)
	set("tag", f.Tag)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	return v
}

// IsZero сообщает, что фильтр не ограничивает выборку.
func (f Filter) IsZero() bool {
	return len(f.Values()) == 0
}

// Validate проверяет формат дат и порядок диапазона.
func (f Filter) Validate() error {
	start, err := parseDate("start_date", f.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end_date", f.EndDate)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: start_date %s позже end_date %s", ErrInvalidFilter, f.StartDate, f.EndDate)
	}
	return nil
}

// parseDate разбирает дату фильтра. Дата с пробелами некорректна:
// она ушла бы в запрос в таком виде.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q не в формате YYYY-MM-DD", ErrInvalidFilter, field, value)
	}
	return t, nil
}

package docquery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/docservice"
	"github.com/aventuscto/doc-console/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLister — Lister с заданными ответами.
type fakeLister struct {
	docs    []model.Document
	err     error
	queries []url.Values
	// hook вызывается перед возвратом ответа
	hook func()
}

func (f *fakeLister) ListDocuments(_ context.Context, query url.Values) ([]model.Document, error) {
	f.queries = append(f.queries, query)
	if f.hook != nil {
		f.hook()
	}
	return f.docs, f.err
}

func TestFilter_Values(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   url.Values
	}{
		{
			name:   "только имя файла",
			filter: Filter{Filename: "report"},
			want:   url.Values{"filename": {"report"}},
		},
		{
			name:   "пустой фильтр",
			filter: Filter{},
			want:   url.Values{},
		},
		{
			name:   "значения передаются как введены",
			filter: Filter{Filename: "  ", Tag: " HR "},
			want:   url.Values{"filename": {"  "}, "tag": {" HR "}},
		},
		{
			name:   "все поля",
			filter: Filter{Filename: "a", Tag: "b", StartDate: "2024-01-01", EndDate: "2024-12-31"},
			want: url.Values{
				"filename":   {"a"},
				"tag":        {"b"},
				"start_date": {"2024-01-01"},
				"end_date":   {"2024-12-31"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Values())
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{"пустой", Filter{}, false},
		{"корректный диапазон", Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, false},
		{"один день", Filter{StartDate: "2024-01-01", EndDate: "2024-01-01"}, false},
		{"только начало", Filter{StartDate: "2024-01-01"}, false},
		{"обратный диапазон", Filter{StartDate: "2024-02-01", EndDate: "2024-01-01"}, true},
		{"неверный формат", Filter{EndDate: "01/02/2024"}, true},
		{"дата с пробелами", Filter{StartDate: " 2024-01-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterFromValues(t *testing.T) {
	f := FilterFromValues(url.Values{"filename": {"x"}, "end_date": {"2024-01-01"}})
	assert.Equal(t, Filter{Filename: "x", EndDate: "2024-01-01"}, f)
	assert.False(t, f.IsZero())
	assert.False(t, Filter{Tag: " "}.IsZero())
	assert.True(t, Filter{}.IsZero())
}

func TestModel_SearchReplacesResults(t *testing.T) {
	lister := &fakeLister{docs: []model.Document{{ID: 3}, {ID: 1}, {ID: 2}}}
	m := New(lister, testLogger())

	require.NoError(t, m.Search(context.Background(), Filter{Filename: "report"}))

	assert.Equal(t, url.Values{"filename": {"report"}}, lister.queries[0])
	assert.Equal(t, []int{3, 1, 2}, ids(m.Results()), "порядок backend сохраняется")
	assert.Equal(t, Filter{Filename: "report"}, m.Filter())
	assert.True(t, m.Searched())
	assert.False(t, m.Loading())
}

func TestModel_SearchFailureKeepsResults(t *testing.T) {
	lister := &fakeLister{docs: []model.Document{{ID: 1}}}
	m := New(lister, testLogger())
	require.NoError(t, m.Search(context.Background(), Filter{}))

	lister.docs, lister.err = nil, errors.New("backend недоступен")
	err := m.Search(context.Background(), Filter{Tag: "HR"})

	require.Error(t, err)
	assert.Equal(t, []int{1}, ids(m.Results()))
}

func TestModel_SearchInvalidFilter(t *testing.T) {
	lister := &fakeLister{}
	m := New(lister, testLogger())

	err := m.Search(context.Background(), Filter{StartDate: "вчера"})

	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Empty(t, lister.queries, "запрос не должен уходить")
}

func TestModel_SearchCancelledNotCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lister := &fakeLister{docs: []model.Document{{ID: 9}}, hook: cancel}
	m := New(lister, testLogger())

	err := m.Search(ctx, Filter{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Results())
	assert.False(t, m.Searched())
}

func TestModel_StaleSearchDiscarded(t *testing.T) {
	m := New(nil, testLogger())
	newer := &fakeLister{docs: []model.Document{{ID: 2}}}
	older := &fakeLister{docs: []model.Document{{ID: 1}}}

	// Пока выполняется первый поиск, запускается и завершается второй
	older.hook = func() {
		m.lister = newer
		require.NoError(t, m.Search(context.Background(), Filter{Tag: "new"}))
	}
	m.lister = older
	require.NoError(t, m.Search(context.Background(), Filter{Tag: "old"}))

	assert.Equal(t, []int{2}, ids(m.Results()))
	assert.Equal(t, "new", m.Filter().Tag)
}

func TestModel_ResetDoesNotSearch(t *testing.T) {
	lister := &fakeLister{docs: []model.Document{{ID: 1}}}
	m := New(lister, testLogger())
	require.NoError(t, m.Search(context.Background(), Filter{Filename: "a", Tag: "b"}))

	f := m.Reset()

	assert.Equal(t, Filter{}, f)
	assert.Equal(t, Filter{}, m.Filter())
	assert.Len(t, lister.queries, 1)
	assert.Equal(t, []int{1}, ids(m.Results()), "результаты остаются до следующего поиска")
}

// TestModel_QueryOnTheWire проверяет query-строку реального запроса.
func TestModel_QueryOnTheWire(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	api, err := apiclient.New(apiclient.ServiceDocuments, server.URL, nil, apiclient.WithLogger(testLogger()))
	require.NoError(t, err)
	m := New(docservice.New(api, "", nil, testLogger()), testLogger())

	require.NoError(t, m.Search(context.Background(), Filter{Filename: "report"}))
	assert.Equal(t, "filename=report", rawQuery)

	require.NoError(t, m.Search(context.Background(), Filter{}))
	assert.Empty(t, rawQuery)
}

func ids(docs []model.Document) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

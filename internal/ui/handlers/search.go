// search.go — страница поиска документов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aventuscto/doc-console/internal/docquery"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// SearchHandler — обработчик страницы поиска.
type SearchHandler struct {
	docs   DocumentService
	logger *slog.Logger
}

// NewSearchHandler создаёт новый SearchHandler.
func NewSearchHandler(docs DocumentService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		docs:   docs,
		logger: logger.With(slog.String("component", "ui.search")),
	}
}

// HandleSearch обрабатывает GET /search.
// Открытие страницы выполняет поиск без фильтра. Параметры applied_*
// хранят фильтр показанных результатов: сброс (?reset=1) очищает поля и
// оставляет эти результаты, некорректный фильтр тоже их не теряет.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := docquery.New(h.docs, h.logger)
	data := pages.SearchData{
		Layout:       layoutFor(r),
		DocumentList: pages.DocumentList{Empty: "search.empty"},
	}

	values := r.URL.Query()
	applied := appliedFilter(values)
	status := http.StatusOK

	var err error
	if values.Has("reset") {
		err = query.Search(r.Context(), applied)
	} else {
		filter := docquery.FilterFromValues(values)
		data.Filename, data.Tag = filter.Filename, filter.Tag
		data.StartDate, data.EndDate = filter.StartDate, filter.EndDate

		err = query.Search(r.Context(), filter)
		if errors.Is(err, docquery.ErrInvalidFilter) {
			data.Error = i18n.T(r.Context(), "search.invalid")
			status = http.StatusUnprocessableEntity
			// Результаты прежнего фильтра остаются на экране
			if prevErr := query.Search(r.Context(), applied); !errors.Is(prevErr, docquery.ErrInvalidFilter) {
				err = prevErr
			}
		}
	}

	switch {
	case err == nil, errors.Is(err, docquery.ErrInvalidFilter):
	case sessionLost(w, r, err):
		return
	case data.Error == "":
		data.Error = loadErrorText(r.Context(), err)
	}

	if query.Searched() {
		applied = query.Filter()
	}
	data.Applied = applied
	data.Searched = query.Searched()
	data.Documents = documentRows(query.Results(), h.docs.DownloadURL)
	renderPage(w, r, h.logger, status, pages.Search(data))
}

// appliedFilter читает фильтр показанных результатов из параметров applied_*.
func appliedFilter(v url.Values) docquery.Filter {
	return docquery.Filter{
		Filename:  v.Get("applied_filename"),
		Tag:       v.Get("applied_tag"),
		StartDate: v.Get("applied_start_date"),
		EndDate:   v.Get("applied_end_date"),
	}
}

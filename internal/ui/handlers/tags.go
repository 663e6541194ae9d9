// tags.go — справочник определений мета-тегов.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aventuscto/doc-console/internal/entity"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// TagsHandler — обработчик страницы мета-тегов.
type TagsHandler struct {
	docs   DocumentService
	logger *slog.Logger
}

// NewTagsHandler создаёт новый TagsHandler.
func NewTagsHandler(docs DocumentService, logger *slog.Logger) *TagsHandler {
	return &TagsHandler{
		docs:   docs,
		logger: logger.With(slog.String("component", "ui.tags")),
	}
}

// HandleTags обрабатывает GET /tags.
func (h *TagsHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	tags := entity.NewMetaTags(h.docs, h.logger)
	if err := tags.Refresh(r.Context()); sessionLost(w, r, err) {
		return
	}
	h.render(w, r, tags, http.StatusOK)
}

// HandleCreateTag обрабатывает POST /tags.
func (h *TagsHandler) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tags := entity.NewMetaTags(h.docs, h.logger)
	tags.SetForm(entity.TagForm{Name: r.PostFormValue("name"), Label: r.PostFormValue("label")})

	err := tags.Create(ctx)
	if sessionLost(w, r, err) {
		return
	}
	if refreshErr := ensureLoaded(ctx, tags, err); sessionLost(w, r, refreshErr) {
		return
	}
	h.render(w, r, tags, formStatus(err))
}

func (h *TagsHandler) render(w http.ResponseWriter, r *http.Request, tags *entity.MetaTags, status int) {
	st := tags.State()
	data := pages.TagsData{
		Layout:      layoutFor(r),
		Alert:       pages.Alert{Notice: st.Notice, Error: st.Message},
		Definitions: st.Items,
		LoadError:   loadErrorText(r.Context(), st.Err),
		Name:        st.Form.Name,
		Label:       st.Form.Label,
	}
	renderPage(w, r, h.logger, status, pages.Tags(data))
}

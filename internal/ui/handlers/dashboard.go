// dashboard.go — главная страница: загрузка документа и последние документы.
package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/entity"
	"github.com/aventuscto/doc-console/internal/tagedit"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// maxUploadMemory — сколько байт multipart-формы держится в памяти,
// остальное уходит во временные файлы.
const maxUploadMemory = 32 << 20

// Действия формы загрузки.
const (
	actionAddTag = "add-tag"
	actionUpload = "upload"
)

// DashboardHandler — обработчик главной страницы.
type DashboardHandler struct {
	docs   DocumentService
	logger *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(docs DocumentService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		docs:   docs,
		logger: logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard обрабатывает GET / — форма загрузки и список документов.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	upload := entity.NewUpload(h.docs, h.logger)
	if err := upload.Refresh(r.Context()); sessionLost(w, r, err) {
		return
	}
	h.render(w, r, upload, http.StatusOK)
}

// HandleUpload обрабатывает POST /documents.
// Кнопки формы: add-tag (добавить тег в редактор), remove_tag=<id>
// (убрать тег), upload (отправить документ). Значения тегов
// передаются парами tag_id/tag_value и восстанавливаются в редактор.
func (h *DashboardHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Warn("Некорректная форма загрузки", slog.String("error", err.Error()))
		http.Error(w, "Некорректная форма загрузки", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	ctx := r.Context()
	upload := entity.NewUpload(h.docs, h.logger)
	upload.SetForm(entity.UploadForm{Title: r.FormValue("title")})

	// Определения нужны до восстановления редактора: теги с неизвестным id
	// не показываются на странице и не должны уйти в загрузку
	refreshErr := upload.Refresh(ctx)
	if sessionLost(w, r, refreshErr) {
		return
	}
	restoreTags(upload.Tags(), r.MultipartForm.Value, upload.State().Deps)

	if removeID := r.FormValue("remove_tag"); removeID != "" {
		if id, err := strconv.Atoi(removeID); err == nil {
			upload.Tags().RemoveTag(id)
		}
		h.render(w, r, upload, http.StatusOK)
		return
	}

	if r.FormValue("action") == actionAddTag {
		if id, err := strconv.Atoi(r.FormValue("new_tag")); err == nil && knownDefinition(upload.State().Deps, id) {
			upload.Tags().AddTag(id)
		}
		h.render(w, r, upload, http.StatusOK)
		return
	}

	if refreshErr != nil {
		h.render(w, r, upload, formStatus(refreshErr))
		return
	}

	var (
		filename string
		content  io.Reader
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		filename, content = header.Filename, file
	}

	err := upload.Submit(ctx, filename, content)
	if sessionLost(w, r, err) {
		return
	}
	h.render(w, r, upload, formStatus(err))
}

// render строит данные страницы из снимка модели загрузки.
func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, upload *entity.Upload, status int) {
	st := upload.State()

	definitions := make(map[int]model.TagDefinition, len(st.Deps))
	for _, def := range st.Deps {
		definitions[def.ID] = def
	}

	var rows []pages.TagRow
	for _, entry := range upload.Tags().Entries() {
		def, ok := definitions[entry.TagDefinitionID]
		if !ok {
			continue
		}
		rows = append(rows, pages.TagRow{ID: def.ID, Name: def.Name, Label: def.Label, Value: entry.Value})
	}

	data := pages.DashboardData{
		Layout: layoutFor(r),
		Alert:  pages.Alert{Notice: st.Notice, Error: st.Message},
		DocumentList: pages.DocumentList{
			Documents: documentRows(st.Items, h.docs.DownloadURL),
			Empty:     "documents.empty",
			LoadError: loadErrorText(r.Context(), st.Err),
		},
		DocTitle:  st.Form.Title,
		Available: slices.Collect(upload.Tags().AvailableDefinitions(st.Deps)),
		Tags:      rows,
	}
	renderPage(w, r, h.logger, status, pages.Dashboard(data))
}

// restoreTags восстанавливает редактор тегов из пар tag_id/tag_value формы.
// Пары с id вне defs отбрасываются.
func restoreTags(editor *tagedit.Editor, form url.Values, defs []model.TagDefinition) {
	ids, values := form["tag_id"], form["tag_value"]
	for i, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil || !knownDefinition(defs, id) {
			continue
		}
		editor.AddTag(id)
		if i < len(values) {
			editor.SetValue(id, values[i])
		}
	}
}

func knownDefinition(defs []model.TagDefinition, id int) bool {
	return slices.ContainsFunc(defs, func(d model.TagDefinition) bool { return d.ID == id })
}

// documentRows добавляет к документам ссылки на скачивание.
func documentRows(docs []model.Document, downloadURL func(string) string) []pages.DocumentRow {
	rows := make([]pages.DocumentRow, len(docs))
	for i, d := range docs {
		rows[i] = pages.DocumentRow{Document: d, URL: downloadURL(d.Filename)}
	}
	return rows
}

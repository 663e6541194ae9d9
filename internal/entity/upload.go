package entity

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aventuscto/doc-console/internal/docservice"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/tagedit"
)

// Сообщения формы загрузки.
const (
	UploadSucceeded = "Upload successful!"
	UploadFailed    = "Upload failed. Please try again."
)

// DocumentAPI — операции document-service для модели загрузки.
type DocumentAPI interface {
	ListDocuments(ctx context.Context, query url.Values) ([]model.Document, error)
	ListTagDefinitions(ctx context.Context) ([]model.TagDefinition, error)
	UploadDocument(ctx context.Context, up docservice.Upload) (*model.Document, error)
}

// UploadForm — поля формы загрузки (кроме файла и тегов).
type UploadForm struct {
	Title string
}

// Upload — форма загрузки документа и список последних документов
// (справочник — определения мета-тегов для редактора тегов).
type Upload struct {
	base[model.Document, model.TagDefinition, UploadForm]
	api    DocumentAPI
	tags   *tagedit.Editor
	logger *slog.Logger
}

// NewUpload создаёт модель загрузки.
func NewUpload(api DocumentAPI, logger *slog.Logger) *Upload {
	return &Upload{
		api:    api,
		tags:   tagedit.New(),
		logger: logger.With(slog.String("component", "upload_model")),
	}
}

// Tags возвращает редактор значений тегов формы.
func (u *Upload) Tags() *tagedit.Editor {
	return u.tags
}

// Refresh загружает документы и определения тегов.
func (u *Upload) Refresh(ctx context.Context) error {
	listDocuments := func(ctx context.Context) ([]model.Document, error) {
		return u.api.ListDocuments(ctx, nil)
	}
	if err := u.refresh(ctx, listDocuments, u.api.ListTagDefinitions); err != nil {
		u.logger.Warn("Ошибка загрузки документов", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Submit загружает файл с заголовком формы и значениями тегов редактора.
// Успех: форма и редактор очищаются, список документов перечитывается.
func (u *Upload) Submit(ctx context.Context, filename string, content io.Reader) error {
	form, _ := u.snapshot()

	if err := required("title", form.Title, "file", filename); err != nil || content == nil {
		if err == nil {
			err = &ValidationError{Fields: []string{"file"}}
		}
		u.fail(validationMessage(err))
		return err
	}

	doc, err := u.api.UploadDocument(ctx, docservice.Upload{
		Title:    strings.TrimSpace(form.Title),
		Filename: filename,
		Content:  content,
		Tags:     u.tags.ToSubmissionPayload(),
	})
	if err != nil {
		u.logger.Warn("Ошибка загрузки документа",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		u.fail(UploadFailed)
		return err
	}

	u.logger.Debug("Документ загружен", slog.Int("id", doc.ID))
	u.tags.Reset()
	u.succeed(UploadSucceeded)
	_ = u.Refresh(ctx)
	return nil
}

package entity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// DefaultTagError — сообщение об ошибке создания определения тега.
const DefaultTagError = "Failed to create tag"

// TagAPI — операции document-service для модели мета-тегов.
type TagAPI interface {
	ListTagDefinitions(ctx context.Context) ([]model.TagDefinition, error)
	CreateTagDefinition(ctx context.Context, name, label string) (*model.TagDefinition, error)
}

// TagForm — поля формы создания определения тега.
type TagForm struct {
	// Name — системный идентификатор
	Name string
	// Label — отображаемое имя
	Label string
}

// MetaTags — список определений мета-тегов и форма создания (без справочника).
type MetaTags struct {
	base[model.TagDefinition, struct{}, TagForm]
	api    TagAPI
	logger *slog.Logger
}

// NewMetaTags создаёт модель мета-тегов.
func NewMetaTags(api TagAPI, logger *slog.Logger) *MetaTags {
	return &MetaTags{api: api, logger: logger.With(slog.String("component", "meta_tags_model"))}
}

// Refresh загружает определения тегов.
func (m *MetaTags) Refresh(ctx context.Context) error {
	if err := m.refresh(ctx, m.api.ListTagDefinitions, nil); err != nil {
		m.logger.Warn("Ошибка загрузки мета-тегов", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Create создаёт определение тега.
func (m *MetaTags) Create(ctx context.Context) error {
	form, _ := m.snapshot()

	if err := required("name", form.Name, "label", form.Label); err != nil {
		m.fail(validationMessage(err))
		return err
	}

	if _, err := m.api.CreateTagDefinition(ctx, strings.TrimSpace(form.Name), strings.TrimSpace(form.Label)); err != nil {
		m.logger.Warn("Ошибка создания мета-тега",
			slog.String("name", form.Name),
			slog.String("error", err.Error()),
		)
		m.fail(DefaultTagError)
		return err
	}

	m.succeed("")
	_ = m.Refresh(ctx)
	return nil
}

package entity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/userservice"
)

// DefaultGroupError — сообщение, если backend не вернул detail.
const DefaultGroupError = "Failed to create group"

// GroupAPI — операции user-service для модели групп.
type GroupAPI interface {
	ListGroups(ctx context.Context) ([]model.Group, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	CreateGroup(ctx context.Context, req userservice.CreateGroupRequest) (*model.Group, error)
}

// GroupForm — поля формы создания группы.
type GroupForm struct {
	Name string
}

// Groups — список групп и форма создания (справочник — роли).
type Groups struct {
	base[model.Group, model.Role, GroupForm]
	api    GroupAPI
	logger *slog.Logger
}

// NewGroups создаёт модель групп.
func NewGroups(api GroupAPI, logger *slog.Logger) *Groups {
	return &Groups{api: api, logger: logger.With(slog.String("component", "groups_model"))}
}

// Refresh загружает группы и роли.
func (g *Groups) Refresh(ctx context.Context) error {
	if err := g.refresh(ctx, g.api.ListGroups, g.api.ListRoles); err != nil {
		g.logger.Warn("Ошибка загрузки групп", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ToggleRole выбирает или снимает роль для новой группы.
func (g *Groups) ToggleRole(id int) bool {
	return g.toggle(id)
}

// Create создаёт группу с выбранными ролями.
func (g *Groups) Create(ctx context.Context) error {
	form, roleIDs := g.snapshot()

	if err := required("name", form.Name); err != nil {
		g.fail(validationMessage(err))
		return err
	}

	_, err := g.api.CreateGroup(ctx, userservice.CreateGroupRequest{
		Name:    strings.TrimSpace(form.Name),
		RoleIDs: roleIDs,
	})
	if err != nil {
		g.logger.Warn("Ошибка создания группы",
			slog.String("name", form.Name),
			slog.String("error", err.Error()),
		)
		g.fail(apiclient.UserMessage(err, DefaultGroupError))
		return err
	}

	g.succeed("")
	_ = g.Refresh(ctx)
	return nil
}

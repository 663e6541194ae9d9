package entity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/userservice"
)

// DefaultRoleError — сообщение, если backend не вернул detail.
const DefaultRoleError = "Failed to create role"

// RoleAPI — операции user-service для модели ролей.
type RoleAPI interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	CreateRole(ctx context.Context, req userservice.CreateRoleRequest) (*model.Role, error)
}

// RoleForm — поля формы создания роли.
type RoleForm struct {
	Name string
}

// Roles — список ролей и форма создания (справочник — разрешения).
type Roles struct {
	base[model.Role, model.Permission, RoleForm]
	api    RoleAPI
	logger *slog.Logger
}

// NewRoles создаёт модель ролей.
func NewRoles(api RoleAPI, logger *slog.Logger) *Roles {
	return &Roles{api: api, logger: logger.With(slog.String("component", "roles_model"))}
}

// Refresh загружает роли и разрешения.
func (r *Roles) Refresh(ctx context.Context) error {
	if err := r.refresh(ctx, r.api.ListRoles, r.api.ListPermissions); err != nil {
		r.logger.Warn("Ошибка загрузки ролей", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// TogglePermission выбирает или снимает разрешение для новой роли.
func (r *Roles) TogglePermission(id int) bool {
	return r.toggle(id)
}

// Create создаёт роль с выбранными разрешениями.
func (r *Roles) Create(ctx context.Context) error {
	form, permissionIDs := r.snapshot()

	if err := required("name", form.Name); err != nil {
		r.fail(validationMessage(err))
		return err
	}

	_, err := r.api.CreateRole(ctx, userservice.CreateRoleRequest{
		Name:          strings.TrimSpace(form.Name),
		PermissionIDs: permissionIDs,
	})
	if err != nil {
		r.logger.Warn("Ошибка создания роли",
			slog.String("name", form.Name),
			slog.String("error", err.Error()),
		)
		r.fail(apiclient.UserMessage(err, DefaultRoleError))
		return err
	}

	r.succeed("")
	_ = r.Refresh(ctx)
	return nil
}

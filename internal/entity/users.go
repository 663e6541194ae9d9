package entity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/userservice"
)

// DefaultUserError — сообщение, если backend не вернул detail.
const DefaultUserError = "Failed to create user"

// UserAPI — операции user-service для модели пользователей.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
	CreateUser(ctx context.Context, req userservice.CreateUserRequest) (*model.User, error)
}

// UserForm — поля формы создания пользователя.
type UserForm struct {
	Username string
	Password string
	// GroupID — выбранная группа (nil — без группы)
	GroupID *int
}

// Users — список пользователей и форма создания (справочник — группы).
type Users struct {
	base[model.User, model.Group, UserForm]
	api    UserAPI
	logger *slog.Logger
}

// NewUsers создаёт модель пользователей.
func NewUsers(api UserAPI, logger *slog.Logger) *Users {
	return &Users{api: api, logger: logger.With(slog.String("component", "users_model"))}
}

// Refresh загружает пользователей и группы.
func (u *Users) Refresh(ctx context.Context) error {
	if err := u.refresh(ctx, u.api.ListUsers, u.api.ListGroups); err != nil {
		u.logger.Warn("Ошибка загрузки пользователей", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Create создаёт пользователя из текущей формы.
// Успех: форма очищается, список перечитывается.
// Ошибка: Message содержит текст для пользователя, форма не меняется.
func (u *Users) Create(ctx context.Context) error {
	form, _ := u.snapshot()

	if err := required("username", form.Username, "password", form.Password); err != nil {
		u.fail(validationMessage(err))
		return err
	}

	_, err := u.api.CreateUser(ctx, userservice.CreateUserRequest{
		Username: strings.TrimSpace(form.Username),
		Password: form.Password,
		GroupID:  form.GroupID,
	})
	if err != nil {
		u.logger.Warn("Ошибка создания пользователя",
			slog.String("username", form.Username),
			slog.String("error", err.Error()),
		)
		u.fail(apiclient.UserMessage(err, DefaultUserError))
		return err
	}

	u.succeed("")
	_ = u.Refresh(ctx)
	return nil
}

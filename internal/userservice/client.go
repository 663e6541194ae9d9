// Пакет userservice — клиент user-service: вход, пользователи, группы,
// роли и разрешения.
package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
)

// DefaultLoginPath — путь получения токена по умолчанию.
const DefaultLoginPath = "/token"

// Пути user-service.
const (
	usersPath       = "/users/"
	groupsPath      = "/groups/"
	rolesPath       = "/roles/"
	permissionsPath = "/permissions/"
)

// ErrEmptyToken — user-service не вернул access_token.
var ErrEmptyToken = errors.New("user-service не вернул access_token")

// TokenResponse — ответ на запрос токена.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateUserRequest — тело POST /users/.
// GroupID сериализуется как null, если группа не выбрана.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	GroupID  *int   `json:"group_id"`
}

// CreateGroupRequest — тело POST /groups/.
type CreateGroupRequest struct {
	Name    string `json:"name"`
	RoleIDs []int  `json:"role_ids"`
}

// CreateRoleRequest — тело POST /roles/.
type CreateRoleRequest struct {
	Name          string `json:"name"`
	PermissionIDs []int  `json:"permission_ids"`
}

// Client — клиент user-service.
type Client struct {
	api       *apiclient.Client
	loginPath string
	logger    *slog.Logger
}

// New создаёт клиент user-service. Пустой loginPath — DefaultLoginPath.
func New(api *apiclient.Client, loginPath string, logger *slog.Logger) *Client {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Client{
		api:       api,
		loginPath: loginPath,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Login обменивает имя и пароль на учётные данные.
// POST {loginPath} (form: username, password) → {access_token, token_type}.
// Если токен — JWT, из него без проверки подписи читаются exp и имя пользователя:
// подпись проверяют backend-сервисы.
func (c *Client) Login(ctx context.Context, username, password string) (model.Credential, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var token TokenResponse
	err := c.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        c.loginPath,
		Body:        strings.NewReader(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	}, &token)
	if err != nil {
		return model.Credential{}, fmt.Errorf("Login: %w", err)
	}
	if token.AccessToken == "" {
		return model.Credential{}, ErrEmptyToken
	}

	cred := credentialFromToken(token.AccessToken, username)
	c.logger.Info("Вход выполнен",
		slog.String("username", cred.DisplayName),
		slog.Bool("expires_known", !cred.ExpiresAt.IsZero()),
	)
	return cred, nil
}

// tokenClaims — claims, которые читаются из access token.
type tokenClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	Username          string `json:"username"`
}

// credentialFromToken строит Credential. Непрозрачный токен допустим:
// тогда срок действия неизвестен, а имя берётся из формы входа.
func credentialFromToken(accessToken, username string) model.Credential {
	cred := model.Credential{
		Token:       accessToken,
		DisplayName: strings.TrimSpace(username),
	}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err == nil {
		if claims.ExpiresAt != nil {
			cred.ExpiresAt = claims.ExpiresAt.Time
		}
		if cred.DisplayName == "" {
			cred.DisplayName = firstNonEmpty(claims.PreferredUsername, claims.Username, claims.Subject)
		}
	}

	if cred.DisplayName == "" {
		cred.DisplayName = model.DefaultDisplayName
	}
	return cred
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// --- Пользователи ---

// ListUsers возвращает список пользователей. GET /users/
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	return list[model.User](ctx, c.api, usersPath)
}

// CreateUser создаёт пользователя. POST /users/
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	user, err := create[model.User](ctx, c.api, usersPath, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Пользователь создан", slog.Int("id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// --- Группы ---

// ListGroups возвращает список групп. GET /groups/
func (c *Client) ListGroups(ctx context.Context) ([]model.Group, error) {
	return list[model.Group](ctx, c.api, groupsPath)
}

// CreateGroup создаёт группу. POST /groups/
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*model.Group, error) {
	if req.RoleIDs == nil {
		req.RoleIDs = []int{}
	}
	group, err := create[model.Group](ctx, c.api, groupsPath, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Группа создана", slog.Int("id", group.ID), slog.String("name", group.Name))
	return group, nil
}

// --- Роли и разрешения ---

// ListRoles возвращает список ролей. GET /roles/
func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	return list[model.Role](ctx, c.api, rolesPath)
}

// CreateRole создаёт роль. POST /roles/
func (c *Client) CreateRole(ctx context.Context, req CreateRoleRequest) (*model.Role, error) {
	if req.PermissionIDs == nil {
		req.PermissionIDs = []int{}
	}
	role, err := create[model.Role](ctx, c.api, rolesPath, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Роль создана", slog.Int("id", role.ID), slog.String("name", role.Name))
	return role, nil
}

// ListPermissions возвращает список разрешений. GET /permissions/
func (c *Client) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return list[model.Permission](ctx, c.api, permissionsPath)
}

// list выполняет GET коллекции. null в ответе — пустой список.
func list[T any](ctx context.Context, api *apiclient.Client, path string) ([]T, error) {
	var items []T
	if err := api.Do(ctx, apiclient.Request{Path: path}, &items); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// create выполняет POST коллекции с JSON-телом.
func create[T any](ctx context.Context, api *apiclient.Client, path string, body any) (*T, error) {
	var item T
	if err := api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: path, JSON: body}, &item); err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	return &item, nil
}

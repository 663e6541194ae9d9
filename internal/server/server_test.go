package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventuscto/doc-console/internal/api/handlers"
	"github.com/aventuscto/doc-console/internal/docservice"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/ui/auth"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
	uihandlers "github.com/aventuscto/doc-console/internal/ui/handlers"
	uimiddleware "github.com/aventuscto/doc-console/internal/ui/middleware"
	"github.com/aventuscto/doc-console/internal/userservice"
)

type okChecker struct{}

func (okChecker) CheckReady() (string, string) { return "ok", "" }

type stubDocs struct{}

func (stubDocs) ListDocuments(context.Context, url.Values) ([]model.Document, error) {
	return nil, nil
}

func (stubDocs) ListTagDefinitions(context.Context) ([]model.TagDefinition, error) {
	return []model.TagDefinition{{ID: 1, Name: "department", Label: "Department"}}, nil
}

func (stubDocs) UploadDocument(context.Context, docservice.Upload) (*model.Document, error) {
	return &model.Document{}, nil
}

func (stubDocs) CreateTagDefinition(_ context.Context, name, label string) (*model.TagDefinition, error) {
	return &model.TagDefinition{Name: name, Label: label}, nil
}

func (stubDocs) DownloadURL(filename string) string { return "/uploads/" + filename }

type stubUsers struct{}

func (stubUsers) Login(_ context.Context, username, _ string) (model.Credential, error) {
	return model.Credential{Token: "jwt", DisplayName: username}, nil
}

func (stubUsers) ListUsers(context.Context) ([]model.User, error)   { return nil, nil }
func (stubUsers) ListGroups(context.Context) ([]model.Group, error) { return nil, nil }
func (stubUsers) ListRoles(context.Context) ([]model.Role, error)   { return nil, nil }
func (stubUsers) ListPermissions(context.Context) ([]model.Permission, error) {
	return nil, nil
}

func (stubUsers) CreateUser(context.Context, userservice.CreateUserRequest) (*model.User, error) {
	return &model.User{}, nil
}

func (stubUsers) CreateGroup(context.Context, userservice.CreateGroupRequest) (*model.Group, error) {
	return &model.Group{}, nil
}

func (stubUsers) CreateRole(context.Context, userservice.CreateRoleRequest) (*model.Role, error) {
	return &model.Role{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bundle, err := i18n.Load(logger)
	require.NoError(t, err)
	sm, err := auth.NewSessionManager("test-key", false)
	require.NoError(t, err)

	return NewRouter(logger, Components{
		Health:    handlers.NewHealthHandler(okChecker{}, okChecker{}),
		Bundle:    bundle,
		Auth:      uimiddleware.NewUIAuth(sm, logger),
		Login:     uihandlers.NewAuthHandler(stubUsers{}, logger),
		Dashboard: uihandlers.NewDashboardHandler(stubDocs{}, logger),
		Search:    uihandlers.NewSearchHandler(stubDocs{}, logger),
		Tags:      uihandlers.NewTagsHandler(stubDocs{}, logger),
		Access:    uihandlers.NewAccessHandler(stubUsers{}, logger),
	})
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/static/css/app.css", http.StatusOK},
		{"/login", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_ProtectedRedirect(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", "/search", "/tags", "/users", "/groups", "/roles"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, uimiddleware.LoginPath, w.Header().Get("Location"))
		})
	}
}

func TestRouter_LoginFlow(t *testing.T) {
	router := newTestRouter(t)

	form := url.Values{"username": {"alice"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "cookie сессии не установлена")

	// Страница с сессией: имя пользователя в шапке, язык из cookie
	req = httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.AddCookie(sessionCookie)
	req.AddCookie(&http.Cookie{Name: i18n.LangCookieName, Value: "ru"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.Contains(t, w.Body.String(), "department")
	assert.Contains(t, w.Body.String(), `lang="ru"`)

	// Выход очищает cookie
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, uimiddleware.LoginPath, w.Header().Get("Location"))
}

// auth.go — вход и выход из веб-консоли.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/session"
	uimiddleware "github.com/aventuscto/doc-console/internal/ui/middleware"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// LoginAPI — получение учётных данных по имени и паролю.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (model.Credential, error)
}

// AuthHandler — обработчики аутентификации веб-консоли.
type AuthHandler struct {
	users  LoginAPI
	logger *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(users LoginAPI, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage — GET /login. С действующей сессией перенаправляет на главную.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil && s.Authenticated() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderPage(w, r, h.logger, http.StatusOK, pages.Login(pages.LoginData{}))
}

// HandleLogin — POST /login
// Получает токен в user-service, открывает сессию (cookie), redirect на /.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := pages.LoginData{Username: username}
	if username == "" || password == "" {
		data.Error = "login.failed"
		renderPage(w, r, h.logger, http.StatusUnprocessableEntity, pages.Login(data))
		return
	}

	cred, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		h.logger.Warn("Ошибка входа",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		data.Error = apiclient.UserMessage(err, "login.failed")
		renderPage(w, r, h.logger, http.StatusUnauthorized, pages.Login(data))
		return
	}

	store := session.FromContext(r.Context())
	if store == nil {
		h.logger.Error("Сессия не инициализирована middleware")
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}
	if err := store.Login(cred); err != nil {
		h.logger.Error("Ошибка открытия сессии", slog.String("error", err.Error()))
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл", slog.String("username", cred.DisplayName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout — POST /logout. Закрывает сессию, redirect на /login.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil {
		if err := s.Logout(); err != nil {
			h.logger.Warn("Ошибка закрытия сессии", slog.String("error", err.Error()))
		}
	}
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusSeeOther)
}

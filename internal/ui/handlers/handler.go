// Пакет handlers — HTTP-обработчики веб-консоли doc-console.
// Каждый запрос создаёт свежую модель (entity, docquery), заполняет её
// из формы, выполняет операцию и рендерит страницу по снимку состояния.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/entity"
	"github.com/aventuscto/doc-console/internal/session"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
	uimiddleware "github.com/aventuscto/doc-console/internal/ui/middleware"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// DocumentService — операции document-service, нужные страницам консоли.
type DocumentService interface {
	entity.DocumentAPI
	entity.TagAPI
	// DownloadURL возвращает ссылку на скачивание файла.
	DownloadURL(filename string) string
}

// UserService — операции user-service, нужные страницам консоли.
type UserService interface {
	entity.UserAPI
	entity.GroupAPI
	entity.RoleAPI
}

// renderPage рендерит компонент в буфер и отправляет его со статусом status.
// Ошибка рендеринга даёт 500 без частично записанной страницы.
func renderPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// layoutFor возвращает данные каркаса для текущей сессии.
func layoutFor(r *http.Request) pages.Layout {
	var l pages.Layout
	if s := session.FromContext(r.Context()); s != nil {
		if cred, ok := s.Credential(); ok {
			l.DisplayName = cred.DisplayName
		}
	}
	return l
}

// sessionLost перенаправляет на страницу входа, если backend отклонил
// учётные данные и сессия закрыта обработчиком 401/403.
func sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	if s := session.FromContext(r.Context()); s != nil && s.Authenticated() {
		return false
	}
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusSeeOther)
	return true
}

// loadErrorText возвращает текст ошибки загрузки списка для показа.
func loadErrorText(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apiclient.ErrTransport):
		return i18n.T(ctx, "error.unavailable")
	default:
		return apiclient.UserMessage(err, i18n.T(ctx, "error.load"))
	}
}

// formStatus выбирает HTTP-статус ответа на отправку формы.
func formStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, entity.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apiclient.ErrTransport), apiclient.StatusCode(err) >= 500:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// refresher — модель со списками, которые можно перечитать.
type refresher interface {
	Refresh(ctx context.Context) error
}

// ensureLoaded перечитывает списки после неудачной операции:
// успешное создание уже обновило модель само.
func ensureLoaded(ctx context.Context, m refresher, opErr error) error {
	if opErr == nil {
		return nil
	}
	return m.Refresh(ctx)
}

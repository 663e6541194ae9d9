// Пакет middleware — HTTP middleware веб-консоли.
// auth.go — восстановление сессии из cookie и защита страниц консоли.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/aventuscto/doc-console/internal/session"
	"github.com/aventuscto/doc-console/internal/ui/auth"
)

// LoginPath — страница входа, куда перенаправляются запросы без сессии.
const LoginPath = "/login"

// UIAuth — middleware сессий веб-консоли.
// На каждый запрос создаётся session.Store поверх зашифрованной cookie;
// Store кладётся в контекст и служит источником токена для apiclient.
type UIAuth struct {
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(sessionManager *auth.SessionManager, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Session восстанавливает сессию из cookie и помещает Store в контекст.
// Повреждённая cookie очищается, запрос продолжается без сессии.
func (ua *UIAuth) Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := session.NewStore(ua.sessionManager.Persister(w, r), ua.logger)
			if err := store.Restore(); err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				ua.sessionManager.ClearSessionCookie(w)
			}

			next.ServeHTTP(w, r.WithContext(session.WithStore(r.Context(), store)))
		})
	}
}

// RequireSession перенаправляет на страницу входа запросы без действующей сессии.
// Применяется после Session ко всем страницам, кроме /login.
func (ua *UIAuth) RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := session.FromContext(r.Context())
			if store == nil || !store.Authenticated() {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

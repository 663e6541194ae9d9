// middleware.go — HTTP middleware для определения языка пользователя.
// Приоритет: cookie "lang" → заголовок Accept-Language → default "en".
package i18n

import (
	"net/http"
	"time"
)

// LangCookieName — имя cookie для хранения выбранного языка.
const LangCookieName = "lang"

// langCookieMaxAge — время жизни cookie выбора языка (1 год).
const langCookieMaxAge = 365 * 24 * time.Hour

// Middleware помещает в контекст каталоги переводов и язык запроса.
func Middleware(bundle *Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithBundle(r.Context(), bundle)
			ctx = WithLang(ctx, detectLanguage(r, bundle))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLanguage определяет язык из запроса.
func detectLanguage(r *http.Request, bundle *Bundle) string {
	// 1. Cookie "lang" (пользователь явно выбрал язык)
	if cookie, err := r.Cookie(LangCookieName); err == nil && bundle.Has(cookie.Value) {
		return cookie.Value
	}

	// 2. Accept-Language заголовок
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if lang := MatchLanguage(accept); bundle.Has(lang) {
			return lang
		}
	}

	return DefaultLang
}

// SetLangCookie сохраняет выбор языка. Неизвестный язык заменяется языком по умолчанию.
func SetLangCookie(w http.ResponseWriter, bundle *Bundle, lang string) string {
	if !bundle.Has(lang) {
		lang = DefaultLang
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return lang
}

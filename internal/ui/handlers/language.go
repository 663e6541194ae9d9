// language.go — обработчик переключения языка консоли.
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aventuscto/doc-console/internal/ui/i18n"
)

// HandleSetLanguage возвращает обработчик POST /set-language.
// Устанавливает cookie "lang" и перенаправляет на страницу из Referer
// (только путь текущего сайта) или на /.
func HandleSetLanguage(bundle *i18n.Bundle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i18n.SetLangCookie(w, bundle, r.FormValue("lang"))
		http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
	}
}

// backTarget возвращает локальный путь из Referer или "/".
func backTarget(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	target := url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return target.String()
}

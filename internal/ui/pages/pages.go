// Пакет pages — страницы веб-консоли doc-console.
// Каждая страница — templ.Component поверх html/template из templates/:
// общий каркас (layout.html), общие фрагменты (partials.html) и шаблон
// "content" конкретной страницы. Переводы берутся из i18n по контексту.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Имена страниц (файлы templates/<name>.html).
const (
	pageLogin     = "login"
	pageDashboard = "dashboard"
	pageSearch    = "search"
	pageTags      = "tags"
	pageUsers     = "users"
	pageGroups    = "groups"
	pageRoles     = "roles"
)

// templates — разобранные наборы шаблонов по имени страницы.
var templates = mustParse(pageLogin, pageDashboard, pageSearch, pageTags, pageUsers, pageGroups, pageRoles)

var funcs = template.FuncMap{
	"datetime": formatTimestamp,
}

func mustParse(names ...string) map[string]*template.Template {
	set := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		))
		set[name] = t
	}
	return set
}

// Layout — общие данные каркаса страницы.
type Layout struct {
	// Title — ключ перевода заголовка страницы
	Title string
	// DisplayName — имя текущего пользователя (пусто — навигация скрыта)
	DisplayName string
	// Active — путь активного пункта навигации
	Active string
}

func (l Layout) layout() Layout { return l }

type layoutProvider interface {
	layout() Layout
}

// navItem — пункт навигации.
type navItem struct {
	Href   string
	Key    string
	Active bool
}

var navigation = []navItem{
	{Href: "/", Key: "nav.dashboard"},
	{Href: "/search", Key: "nav.search"},
	{Href: "/tags", Key: "nav.tags"},
	{Href: "/users", Key: "nav.users"},
	{Href: "/groups", Key: "nav.groups"},
	{Href: "/roles", Key: "nav.roles"},
}

// view — корневой объект шаблона: данные страницы плюс контекст запроса.
type view struct {
	ctx context.Context
	L   Layout
	D   any
}

// T возвращает перевод ключа на язык запроса.
func (v view) T(key string) string {
	return i18n.T(v.ctx, key)
}

// Tf возвращает перевод с подстановкой аргументов.
func (v view) Tf(key string, args ...any) string {
	return i18n.Tf(v.ctx, key, args...)
}

// Lang возвращает язык запроса.
func (v view) Lang() string {
	return i18n.LangFromContext(v.ctx)
}

// Languages возвращает языки, доступные для переключения.
func (v view) Languages() []string {
	if b := i18n.BundleFromContext(v.ctx); b != nil {
		return b.Languages()
	}
	return []string{i18n.DefaultLang}
}

// Nav возвращает пункты навигации с отмеченным активным.
func (v view) Nav() []navItem {
	items := make([]navItem, len(navigation))
	for i, item := range navigation {
		item.Active = item.Href == v.L.Active
		items[i] = item
	}
	return items
}

// render возвращает компонент страницы name с данными data.
func render(name string, data layoutProvider) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := templates[name]
		if !ok {
			return fmt.Errorf("pages: неизвестная страница %q", name)
		}
		return t.ExecuteTemplate(w, "layout", view{ctx: ctx, L: data.layout(), D: data})
	})
}

// formatTimestamp форматирует время загрузки документа.
func formatTimestamp(ts model.Timestamp) string {
	if text := ts.Display(); text != "" {
		return text
	}
	return "—"
}

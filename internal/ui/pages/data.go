package pages

import (
	"slices"

	"github.com/a-h/templ"

	"github.com/aventuscto/doc-console/internal/docquery"
	"github.com/aventuscto/doc-console/internal/domain/model"
)

// Alert — сообщения формы: Notice — успех, Error — ошибка.
type Alert struct {
	Notice string
	Error  string
}

// DocumentRow — строка таблицы документов со ссылкой на скачивание.
type DocumentRow struct {
	model.Document
	URL string
}

// DocumentList — таблица документов.
type DocumentList struct {
	Documents []DocumentRow
	// Empty — ключ перевода текста пустой таблицы
	Empty string
	// LoadError — ошибка загрузки списка
	LoadError string
}

// TagRow — строка редактора значений тегов.
type TagRow struct {
	ID    int
	Name  string
	Label string
	Value string
}

// LoginData — данные страницы входа.
type LoginData struct {
	Layout
	Username string
	Error    string
}

// DashboardData — форма загрузки и последние документы.
type DashboardData struct {
	Layout
	Alert
	DocumentList
	// DocTitle — заголовок загружаемого документа
	DocTitle string
	// Available — определения тегов, ещё не добавленные в редактор
	Available []model.TagDefinition
	// Tags — строки редактора значений тегов
	Tags []TagRow
}

// SearchData — фильтр и результаты поиска.
type SearchData struct {
	Layout
	DocumentList
	Filename  string
	Tag       string
	StartDate string
	EndDate   string
	Error     string
	Searched  bool
	// Applied — фильтр, по которому получены показанные результаты
	Applied docquery.Filter
}

// TagsData — справочник мета-тегов.
type TagsData struct {
	Layout
	Alert
	Definitions []model.TagDefinition
	LoadError   string
	Name        string
	Label       string
}

// UsersData — пользователи и форма создания.
type UsersData struct {
	Layout
	Alert
	Users     []model.User
	Groups    []model.Group
	LoadError string
	Username  string
	GroupID   int
}

// GroupsData — группы и форма создания.
type GroupsData struct {
	Layout
	Alert
	Groups    []model.Group
	Roles     []model.Role
	LoadError string
	Name      string
	Selected  []int
}

// RolesData — роли и форма создания.
type RolesData struct {
	Layout
	Alert
	Roles       []model.Role
	Permissions []model.Permission
	LoadError   string
	Name        string
	Selected    []int
}

// Login — страница входа.
func Login(data LoginData) templ.Component {
	data.Title = "login.title"
	return render(pageLogin, data)
}

// Dashboard — главная страница: загрузка и последние документы.
func Dashboard(data DashboardData) templ.Component {
	data.Title, data.Active = "dashboard.title", "/"
	return render(pageDashboard, data)
}

// Search — поиск документов.
func Search(data SearchData) templ.Component {
	data.Title, data.Active = "search.title", "/search"
	return render(pageSearch, data)
}

// Tags — справочник мета-тегов.
func Tags(data TagsData) templ.Component {
	data.Title, data.Active = "tags.title", "/tags"
	return render(pageTags, data)
}

// Users — управление пользователями.
func Users(data UsersData) templ.Component {
	data.Title, data.Active = "users.title", "/users"
	return render(pageUsers, data)
}

// Groups — управление группами.
func Groups(data GroupsData) templ.Component {
	data.Title, data.Active = "groups.title", "/groups"
	return render(pageGroups, data)
}

// Roles — управление ролями.
func Roles(data RolesData) templ.Component {
	data.Title, data.Active = "roles.title", "/roles"
	return render(pageRoles, data)
}

// IsSelected сообщает, выбрана ли роль в форме.
func (d GroupsData) IsSelected(id int) bool { return slices.Contains(d.Selected, id) }

// IsSelected сообщает, выбрано ли разрешение в форме.
func (d RolesData) IsSelected(id int) bool { return slices.Contains(d.Selected, id) }

// access.go — управление доступом: пользователи, группы, роли.
package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/aventuscto/doc-console/internal/entity"
	"github.com/aventuscto/doc-console/internal/ui/pages"
)

// AccessHandler — обработчик страниц пользователей, групп и ролей.
type AccessHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewAccessHandler создаёт новый AccessHandler.
func NewAccessHandler(users UserService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		users:  users,
		logger: logger.With(slog.String("component", "ui.access")),
	}
}

// HandleUsers обрабатывает GET /users.
func (h *AccessHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users := entity.NewUsers(h.users, h.logger)
	if err := users.Refresh(r.Context()); sessionLost(w, r, err) {
		return
	}
	h.renderUsers(w, r, users, http.StatusOK)
}

// HandleCreateUser обрабатывает POST /users.
func (h *AccessHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	users := entity.NewUsers(h.users, h.logger)
	users.SetForm(entity.UserForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		GroupID:  optionalID(r.PostFormValue("group_id")),
	})

	err := users.Create(ctx)
	if sessionLost(w, r, err) {
		return
	}
	if refreshErr := ensureLoaded(ctx, users, err); sessionLost(w, r, refreshErr) {
		return
	}
	h.renderUsers(w, r, users, formStatus(err))
}

func (h *AccessHandler) renderUsers(w http.ResponseWriter, r *http.Request, users *entity.Users, status int) {
	st := users.State()
	data := pages.UsersData{
		Layout:    layoutFor(r),
		Alert:     pages.Alert{Notice: st.Notice, Error: st.Message},
		Users:     st.Items,
		Groups:    st.Deps,
		LoadError: loadErrorText(r.Context(), st.Err),
		Username:  st.Form.Username,
	}
	if st.Form.GroupID != nil {
		data.GroupID = *st.Form.GroupID
	}
	renderPage(w, r, h.logger, status, pages.Users(data))
}

// HandleGroups обрабатывает GET /groups.
func (h *AccessHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	groups := entity.NewGroups(h.users, h.logger)
	if err := groups.Refresh(r.Context()); sessionLost(w, r, err) {
		return
	}
	h.renderGroups(w, r, groups, http.StatusOK)
}

// HandleCreateGroup обрабатывает POST /groups. Отмеченные роли приходят
// полями role_id.
func (h *AccessHandler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	groups := entity.NewGroups(h.users, h.logger)
	groups.SetForm(entity.GroupForm{Name: r.PostFormValue("name")})
	for _, id := range formIDs(r.PostForm["role_id"]) {
		groups.ToggleRole(id)
	}

	err := groups.Create(ctx)
	if sessionLost(w, r, err) {
		return
	}
	if refreshErr := ensureLoaded(ctx, groups, err); sessionLost(w, r, refreshErr) {
		return
	}
	h.renderGroups(w, r, groups, formStatus(err))
}

func (h *AccessHandler) renderGroups(w http.ResponseWriter, r *http.Request, groups *entity.Groups, status int) {
	st := groups.State()
	data := pages.GroupsData{
		Layout:    layoutFor(r),
		Alert:     pages.Alert{Notice: st.Notice, Error: st.Message},
		Groups:    st.Items,
		Roles:     st.Deps,
		LoadError: loadErrorText(r.Context(), st.Err),
		Name:      st.Form.Name,
		Selected:  st.Selected,
	}
	renderPage(w, r, h.logger, status, pages.Groups(data))
}

// HandleRoles обрабатывает GET /roles.
func (h *AccessHandler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	roles := entity.NewRoles(h.users, h.logger)
	if err := roles.Refresh(r.Context()); sessionLost(w, r, err) {
		return
	}
	h.renderRoles(w, r, roles, http.StatusOK)
}

// HandleCreateRole обрабатывает POST /roles. Отмеченные разрешения
// приходят полями permission_id.
func (h *AccessHandler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	roles := entity.NewRoles(h.users, h.logger)
	roles.SetForm(entity.RoleForm{Name: r.PostFormValue("name")})
	for _, id := range formIDs(r.PostForm["permission_id"]) {
		roles.TogglePermission(id)
	}

	err := roles.Create(ctx)
	if sessionLost(w, r, err) {
		return
	}
	if refreshErr := ensureLoaded(ctx, roles, err); sessionLost(w, r, refreshErr) {
		return
	}
	h.renderRoles(w, r, roles, formStatus(err))
}

func (h *AccessHandler) renderRoles(w http.ResponseWriter, r *http.Request, roles *entity.Roles, status int) {
	st := roles.State()
	data := pages.RolesData{
		Layout:      layoutFor(r),
		Alert:       pages.Alert{Notice: st.Notice, Error: st.Message},
		Roles:       st.Items,
		Permissions: st.Deps,
		LoadError:   loadErrorText(r.Context(), st.Err),
		Name:        st.Form.Name,
		Selected:    st.Selected,
	}
	renderPage(w, r, h.logger, status, pages.Roles(data))
}

// formIDs разбирает id отмеченных чекбоксов без повторов.
// Повтор переключил бы выбор обратно.
func formIDs(raw []string) []int {
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(s)
		if err != nil || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// optionalID разбирает необязательный id из select (пусто — nil).
func optionalID(raw string) *int {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

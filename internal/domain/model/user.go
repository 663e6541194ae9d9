// Пакет model — доменные модели doc-console.
// Все сущности принадлежат backend-сервисам; клиент хранит только
// эфемерные копии, которые перечитываются после каждой мутации.
package model

// User — пользователь user-service.
type User struct {
	// ID — идентификатор пользователя
	ID int `json:"id"`
	// Username — имя для входа
	Username string `json:"username"`
	// IsActive — активен ли аккаунт
	IsActive bool `json:"is_active"`
	// GroupID — группа пользователя (nil, если не назначена)
	GroupID *int `json:"group_id,omitempty"`
	// Group — развёрнутая группа, если backend её вернул
	Group *Group `json:"group,omitempty"`
}

// GroupName возвращает имя группы пользователя или пустую строку.
func (u *User) GroupName() string {
	if u.Group == nil {
		return ""
	}
	return u.Group.Name
}

// Group — группа пользователей с упорядоченным набором ролей.
type Group struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Roles []Role `json:"roles,omitempty"`
}

// Role — роль с упорядоченным набором разрешений.
type Role struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission — атомарное разрешение.
type Permission struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

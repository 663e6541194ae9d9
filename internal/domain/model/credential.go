package model

import "time"

// DefaultDisplayName — имя, показываемое, если при входе имя не передано.
const DefaultDisplayName = "User"

// Credential — учётные данные текущей сессии: bearer-токен и отображаемое имя.
type Credential struct {
	// Token — непрозрачный bearer-токен
	Token string `json:"token"`
	// DisplayName — имя пользователя для отображения
	DisplayName string `json:"display_name"`
	// ExpiresAt — время истечения токена (нулевое, если неизвестно)
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// IsExpired сообщает, истёк ли токен к моменту now.
// Токен с неизвестным сроком действия считается действующим.
func (c Credential) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

package session

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithStore добавляет хранилище сессии в контекст.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext возвращает хранилище сессии из контекста (nil, если его нет).
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(contextKey{}).(*Store)
	return s
}

// ContextTokens — источник токена, читающий Store из контекста запроса.
// Позволяет разделять один apiclient.Client между сессиями веб-консоли.
var ContextTokens contextTokens

type contextTokens struct{}

// Token возвращает токен сессии из контекста или пустую строку.
func (contextTokens) Token(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token(ctx)
	}
	return ""
}

// LogoutFromContext закрывает сессию, хранящуюся в контексте.
// Используется как обработчик 401/403 apiclient.
func LogoutFromContext(ctx context.Context) {
	if s := FromContext(ctx); s != nil {
		if err := s.Logout(); err != nil {
			s.logger.Warn("Ошибка принудительного выхода", slog.String("error", err.Error()))
		}
	}
}

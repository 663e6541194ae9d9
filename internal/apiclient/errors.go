// errors.go — таксономия ошибок обращения к backend-сервисам.
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport — сетевая ошибка: запрос не дошёл до backend или ответ не получен.
	ErrTransport = errors.New("ошибка транспорта")
	// ErrUnauthorized — учётные данные отсутствуют, истекли или отклонены (401/403).
	ErrUnauthorized = errors.New("доступ запрещён")
)

// APIError — ответ backend с кодом вне диапазона 2xx.
// Статус и тело ответа сохраняются без изменений.
type APIError struct {
	// Service — имя сервиса (documents, users)
	Service string
	// Method — HTTP-метод запроса
	Method string
	// Path — путь запроса относительно базового URL
	Path string
	// StatusCode — HTTP-статус ответа
	StatusCode int
	// Detail — сообщение из поля "detail" тела ответа (может быть пустым)
	Detail string
	// Body — сырое тело ответа
	Body []byte
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(string(e.Body))
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s %s: статус %d: %s", e.Service, e.Method, e.Path, e.StatusCode, msg)
}

// Is сопоставляет 401/403 с ErrUnauthorized для errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && IsAuthStatus(e.StatusCode)
}

// IsAuthStatus сообщает, означает ли статус отказ в авторизации.
func IsAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Detail возвращает сообщение backend из ошибки, если оно есть.
// Для сетевых и прочих ошибок возвращает пустую строку.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// UserMessage возвращает текст для показа пользователю:
// сообщение backend, если оно есть, иначе fallback.
func UserMessage(err error, fallback string) string {
	if detail := Detail(err); detail != "" {
		return detail
	}
	return fallback
}

// StatusCode возвращает HTTP-статус из ошибки или 0, если это не APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseDetail извлекает поле "detail" из JSON-тела ответа.
// Поддерживаются строка и список ошибок валидации вида [{"msg": "..."}].
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if field := lastLoc(it.Loc); field != "" {
				msgs = append(msgs, field+": "+it.Msg)
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// lastLoc возвращает последний строковый элемент loc (имя поля).
func lastLoc(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok {
			return s
		}
	}
	return ""
}

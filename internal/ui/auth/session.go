// Пакет auth — хранение сессии веб-консоли в зашифрованной cookie.
// Шифрование AES-256-GCM; учётные данные не покидают браузер в открытом виде.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/session"
)

// Имя cookie для зашифрованной сессии.
const SessionCookieName = "doc_console_session"

// Максимальный возраст cookie сессии, если срок токена неизвестен (24 часа).
const SessionCookieMaxAge = 24 * 60 * 60

// SessionManager — менеджер сессий веб-консоли.
// Шифрует/дешифрует model.Credential в HTTP cookies через AES-256-GCM.
type SessionManager struct {
	// gcm — AEAD cipher для шифрования/дешифрования.
	gcm cipher.AEAD
	// secure — использовать Secure flag для cookie (true для HTTPS).
	secure bool
}

// NewSessionManager создаёт новый менеджер сессий.
// key — 32-байтовый ключ для AES-256-GCM (base64) или произвольная строка.
// Если key пустой — генерируется случайный ключ (непостоянный между рестартами).
func NewSessionManager(key string, secure bool) (*SessionManager, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			// Не base64 — хешируем строку до 32 bytes через SHA-256
			keyBytes = sha256Key(key)
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &SessionManager{
		gcm:    gcm,
		secure: secure,
	}, nil
}

// Encrypt шифрует учётные данные и возвращает base64-строку.
func (sm *SessionManager) Encrypt(cred model.Credential) (string, error) {
	plaintext, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	// Уникальный nonce для каждого шифрования
	nonce := make([]byte, sm.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	// nonce prepended к ciphertext
	ciphertext := sm.gcm.Seal(nonce, nonce, plaintext, nil)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt дешифрует base64-строку обратно в учётные данные.
func (sm *SessionManager) Decrypt(encrypted string) (*model.Credential, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := sm.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := sm.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var cred model.Credential
	if err := json.Unmarshal(plaintext, &cred); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}

	return &cred, nil
}

// SetSessionCookie устанавливает зашифрованный session cookie в ответ.
// Время жизни cookie ограничено сроком действия токена, если он известен.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, cred model.Credential) error {
	encrypted, err := sm.Encrypt(cred)
	if err != nil {
		return err
	}

	maxAge := SessionCookieMaxAge
	if !cred.ExpiresAt.IsZero() {
		if left := int(time.Until(cred.ExpiresAt).Seconds()); left < maxAge {
			maxAge = max(left, 1)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// GetSessionFromRequest извлекает и дешифрует учётные данные из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*model.Credential, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	return sm.Decrypt(cookie.Value)
}

// ClearSessionCookie удаляет session cookie из ответа (logout).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Persister возвращает session.Persister поверх cookie текущего запроса:
// Load читает cookie запроса, Save и Clear пишут Set-Cookie в ответ.
func (sm *SessionManager) Persister(w http.ResponseWriter, r *http.Request) session.Persister {
	return &cookiePersister{sm: sm, w: w, r: r}
}

// cookiePersister — хранилище сессии в зашифрованной cookie.
type cookiePersister struct {
	sm *SessionManager
	w  http.ResponseWriter
	r  *http.Request
}

func (p *cookiePersister) Load() (*model.Credential, error) {
	return p.sm.GetSessionFromRequest(p.r)
}

func (p *cookiePersister) Save(cred model.Credential) error {
	return p.sm.SetSessionCookie(p.w, cred)
}

func (p *cookiePersister) Clear() error {
	p.sm.ClearSessionCookie(p.w)
	return nil
}

// sha256Key хеширует строковый ключ в 32 bytes через SHA-256.
func sha256Key(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}

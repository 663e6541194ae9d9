// Пакет apiclient — аутентифицированный HTTP-клиент к backend-сервисам
// doc-console (document-service, user-service).
// Один http.RoundTripper добавляет bearer-токен ко всем исходящим запросам,
// независимо от сервиса: клиенты сервисов создаются только через New.
// Поддерживает TLS с кастомным CA (DC_CA_CERT_PATH).
package apiclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Имена сервисов (используются в логах, метриках и ошибках).
const (
	ServiceDocuments = "documents"
	ServiceUsers     = "users"
)

// maxErrorBody — сколько байт тела ошибочного ответа читается в APIError.
const maxErrorBody = 64 << 10

// TokenSource — источник bearer-токена для исходящих запросов.
// Пустая строка означает отсутствие учётных данных.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc — адаптер функции к TokenSource.
type TokenFunc func(ctx context.Context) string

// Token реализует TokenSource.
func (f TokenFunc) Token(ctx context.Context) string {
	return f(ctx)
}

// StaticToken возвращает TokenSource с фиксированным токеном.
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) string { return token })
}

// Request — описание исходящего запроса.
type Request struct {
	// Method — HTTP-метод (по умолчанию GET)
	Method string
	// Path — путь относительно базового URL сервиса, например "/documents/"
	Path string
	// Query — query-параметры (nil — без параметров)
	Query url.Values
	// JSON — тело, сериализуемое в JSON (взаимоисключающе с Body)
	JSON any
	// Body — сырое тело запроса
	Body io.Reader
	// ContentType — Content-Type для Body
	ContentType string
}

// Client — HTTP-клиент к одному backend-сервису.
type Client struct {
	service        string
	baseURL        *url.URL
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *slog.Logger
}

// Option — опция конструктора Client.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	caCertPath     string
	timeout        time.Duration
	onUnauthorized func(ctx context.Context)
	logger         *slog.Logger
}

// WithHTTPClient задаёт базовый HTTP-клиент. Его Transport оборачивается
// bearer-транспортом, сам клиент не изменяется.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithCACert добавляет CA-сертификат к пулу доверия (пустой путь — стандартный пул).
func WithCACert(path string) Option {
	return func(o *options) { o.caCertPath = path }
}

// WithTimeout задаёт таймаут HTTP-клиента (0 — без таймаута, поведение транспорта).
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUnauthorizedHandler задаёт обработчик ответа 401/403 на запрос,
// отправленный с токеном. Используется для принудительного logout.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// WithLogger задаёт логгер.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New создаёт клиент к сервису service с базовым URL baseURL.
// tokens может быть nil — тогда запросы уходят без Authorization.
func New(service, baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("разбор базового URL %s: %w", service, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("базовый URL %s должен содержать схему и хост: %q", service, baseURL)
	}

	if tokens == nil {
		tokens = StaticToken("")
	}

	httpClient := &http.Client{Timeout: o.timeout}
	if o.httpClient != nil {
		copied := *o.httpClient
		httpClient = &copied
	}

	base := httpClient.Transport
	if o.caCertPath != "" {
		tlsConfig, err := buildTLSConfig(o.caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата: %w", err)
		}
		base = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		}
		o.logger.Info("CA-сертификат добавлен в пул доверия",
			slog.String("service", service),
			slog.String("ca_cert", o.caCertPath),
		)
	}
	httpClient.Transport = newBearerTransport(service, base, tokens)

	return &Client{
		service:        service,
		baseURL:        parsed,
		httpClient:     httpClient,
		tokens:         tokens,
		onUnauthorized: o.onUnauthorized,
		logger:         o.logger.With(slog.String("component", "api_client"), slog.String("service", service)),
	}, nil
}

// Service возвращает имя сервиса.
func (c *Client) Service() string {
	return c.service
}

// BaseURL возвращает базовый URL сервиса без trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL возвращает абсолютный URL для пути path.
func (c *Client) URL(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// CredentialKey возвращает sha256-отпечаток текущего токена (пустая строка без токена).
// Используется как ключ кэшей, разделённых по учётным данным.
func (c *Client) CredentialKey(ctx context.Context) string {
	token := c.tokens.Token(ctx)
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Do выполняет запрос и декодирует JSON-ответ в out (nil — тело отбрасывается).
// Ответ вне 2xx возвращается как *APIError; сетевая ошибка — обёрнутый ErrTransport.
// Повторных попыток нет.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	authenticated := c.tokens.Token(ctx) != ""

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Отмена контекста не считается сбоем транспорта
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s %s: %w", c.service, httpReq.Method, req.Path, ctxErr)
		}
		c.logger.Warn("Backend недоступен",
			slog.String("method", httpReq.Method),
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %s %s %s: %w", ErrTransport, c.service, httpReq.Method, req.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Service:    c.service,
			Method:     httpReq.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
			Body:       body,
		}

		c.logger.Warn("Backend вернул ошибку",
			slog.String("method", httpReq.Method),
			slog.String("path", req.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("detail", apiErr.Detail),
		)

		if authenticated && IsAuthStatus(resp.StatusCode) && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s %s %s: %w", c.service, httpReq.Method, req.Path, err)
	}

	c.logger.Debug("Запрос выполнен",
		slog.String("method", httpReq.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

// newRequest строит *http.Request из описания запроса.
func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil && req.Body != nil:
		return nil, errors.New("apiclient: JSON и Body заданы одновременно")
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Body != nil:
		body = req.Body
		contentType = req.ContentType
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s %s: %w", method, req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	return httpReq, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("в %s нет PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

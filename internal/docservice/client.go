// Пакет docservice — клиент document-service: документы, загрузка файлов,
// определения мета-тегов, ссылки на скачивание.
// Все запросы идут через apiclient.Client (bearer-токен добавляет транспорт).
package docservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
)

// Пути document-service.
const (
	documentsPath = "/documents/"
	metaTagsPath  = "/meta-tags/"
)

// ErrEmptyUpload — не задан заголовок, имя файла или содержимое.
var ErrEmptyUpload = errors.New("для загрузки нужны заголовок и файл")

// Upload — данные для POST /documents/ (multipart).
type Upload struct {
	// Title — заголовок документа
	Title string
	// Filename — имя загружаемого файла
	Filename string
	// Content — содержимое файла
	Content io.Reader
	// Tags — значения тегов: id определения → значение
	Tags map[int]string
}

// Client — клиент document-service.
type Client struct {
	api            *apiclient.Client
	uploadsBaseURL string
	cache          *TagCache
	logger         *slog.Logger
}

// New создаёт клиент document-service.
// uploadsBaseURL — базовый URL статической раздачи загруженных файлов.
// cache может быть nil — тогда определения тегов не кэшируются.
func New(api *apiclient.Client, uploadsBaseURL string, cache *TagCache, logger *slog.Logger) *Client {
	return &Client{
		api:            api,
		uploadsBaseURL: uploadsBaseURL,
		cache:          cache,
		logger:         logger.With(slog.String("component", "doc_service")),
	}
}

// ListDocuments запрашивает документы.
// GET /documents/?filename=&tag=&start_date=&end_date= — пустой query возвращает все документы.
// Порядок результатов — как вернул backend.
func (c *Client) ListDocuments(ctx context.Context, query url.Values) ([]model.Document, error) {
	var docs []model.Document
	if err := c.api.Do(ctx, apiclient.Request{Path: documentsPath, Query: query}, &docs); err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// UploadDocument загружает файл с метаданными.
// POST /documents/ (multipart: title, file, tags — JSON-объект {"<id>": "<value>"}).
func (c *Client) UploadDocument(ctx context.Context, up Upload) (*model.Document, error) {
	if strings.TrimSpace(up.Title) == "" || up.Filename == "" || up.Content == nil {
		return nil, ErrEmptyUpload
	}

	tags := up.Tags
	if tags == nil {
		tags = map[int]string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("сериализация тегов: %w", err)
	}

	// Тело пишется потоково, файл целиком в память не читается
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadForm(mw, up, tagsJSON))
	}()

	var doc model.Document
	err = c.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        documentsPath,
		Body:        pr,
		ContentType: mw.FormDataContentType(),
	}, &doc)
	// Разблокируем писателя, если запрос завершился до конца тела
	_ = pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return nil, fmt.Errorf("UploadDocument: %w", err)
	}

	c.logger.Info("Документ загружен",
		slog.Int("id", doc.ID),
		slog.String("filename", doc.Filename),
		slog.Int("tags", len(tags)),
	)
	return &doc, nil
}

// writeUploadForm записывает поля multipart-формы загрузки.
func writeUploadForm(mw *multipart.Writer, up Upload, tagsJSON []byte) error {
	if err := mw.WriteField("title", up.Title); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", up.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return fmt.Errorf("чтение файла %s: %w", up.Filename, err)
	}
	if err := mw.WriteField("tags", string(tagsJSON)); err != nil {
		return err
	}
	return mw.Close()
}

// ListTagDefinitions возвращает определения мета-тегов.
// GET /meta-tags/ — при наличии кэша ответ кэшируется на учётные данные.
func (c *Client) ListTagDefinitions(ctx context.Context) ([]model.TagDefinition, error) {
	key := c.cacheKey(ctx)
	if c.cache != nil {
		if defs, ok := c.cache.Get(key); ok {
			return defs, nil
		}
	}

	var defs []model.TagDefinition
	if err := c.api.Do(ctx, apiclient.Request{Path: metaTagsPath}, &defs); err != nil {
		return nil, fmt.Errorf("ListTagDefinitions: %w", err)
	}
	if defs == nil {
		defs = []model.TagDefinition{}
	}

	if c.cache != nil {
		c.cache.Set(key, defs)
	}
	return defs, nil
}

// CreateTagDefinition создаёт определение мета-тега.
// POST /meta-tags/ {name, label}. Кэш определений сбрасывается.
func (c *Client) CreateTagDefinition(ctx context.Context, name, label string) (*model.TagDefinition, error) {
	var def model.TagDefinition
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   metaTagsPath,
		JSON:   map[string]string{"name": name, "label": label},
	}, &def)
	if err != nil {
		return nil, fmt.Errorf("CreateTagDefinition: %w", err)
	}

	if c.cache != nil {
		c.cache.Purge()
	}

	c.logger.Info("Создано определение тега",
		slog.Int("id", def.ID),
		slog.String("name", def.Name),
	)
	return &def, nil
}

// DownloadURL возвращает прямую ссылку на загруженный файл.
// Ссылка не требует авторизации: статическая раздача backend.
func (c *Client) DownloadURL(filename string) string {
	if c.uploadsBaseURL == "" {
		return c.api.URL("/uploads/" + url.PathEscape(filename))
	}
	return strings.TrimRight(c.uploadsBaseURL, "/") + "/" + url.PathEscape(filename)
}

// cacheKey — ключ кэша определений тегов для текущих учётных данных.
func (c *Client) cacheKey(ctx context.Context) string {
	return c.api.CredentialKey(ctx)
}

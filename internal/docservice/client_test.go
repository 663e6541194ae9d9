package docservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aventuscto/doc-console/internal/apiclient"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient создаёт клиент document-service, направленный на mock-сервер.
func newTestClient(t *testing.T, handler http.HandlerFunc, token string, cache *TagCache) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := apiclient.New(apiclient.ServiceDocuments, server.URL, apiclient.StaticToken(token),
		apiclient.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return New(api, "http://127.0.0.1:8000/uploads/", cache, testLogger())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// TestListDocuments_Query проверяет передачу фильтров и декодирование ответа.
func TestListDocuments_Query(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/documents/" {
			t.Errorf("запрос = %s %s, ожидался GET /documents/", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[
			{"id": 2, "title": "Отчёт", "filename": "report.pdf", "uploaded_at": "2024-05-01T10:00:00",
			 "tags": [{"tag_definition": {"id": 1, "name": "dept", "label": "Department"}, "value": "HR"}]},
			{"id": 1, "title": "Счёт", "filename": "invoice.pdf", "uploaded_at": "2024-04-01T10:00:00", "tags": []}
		]`))
	}, "tok", nil)

	docs, err := client.ListDocuments(context.Background(), url.Values{"filename": {"rep"}, "tag": {"HR"}})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if gotQuery.Get("filename") != "rep" || gotQuery.Get("tag") != "HR" {
		t.Errorf("query = %v", gotQuery)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, ожидалось 2", len(docs))
	}
	// Порядок сохраняется как у backend
	if docs[0].ID != 2 || docs[1].ID != 1 {
		t.Errorf("порядок = [%d %d], ожидался [2 1]", docs[0].ID, docs[1].ID)
	}
	if docs[0].Tags[0].Label() != "Department" || docs[0].Tags[0].Value != "HR" {
		t.Errorf("тег = %+v", docs[0].Tags[0])
	}
}

// TestListDocuments_EmptyBody проверяет, что null превращается в пустой список.
func TestListDocuments_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}, "", nil)

	docs, err := client.ListDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("docs = %#v, ожидался пустой непустой-nil срез", docs)
	}
}

// TestListDocuments_OddTimestamps проверяет, что необычное uploaded_at
// одного документа не теряет остальные документы списка.
func TestListDocuments_OddTimestamps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 3, "title": "A", "filename": "a.pdf", "uploaded_at": "2024-05-01T10:00:00+0000"},
			{"id": 2, "title": "B", "filename": "b.pdf", "uploaded_at": "01.05.2024 10:00"},
			{"id": 1, "title": "C", "filename": "c.pdf", "uploaded_at": "2024-04-01T10:00:00"}
		]`))
	}, "tok", nil)

	docs, err := client.ListDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len(docs) = %d, ожидалось 3", len(docs))
	}
	if want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC); !docs[0].UploadedAt.Equal(want) {
		t.Errorf("docs[0].UploadedAt = %v, ожидается %v", docs[0].UploadedAt.Time, want)
	}
	if got := docs[1].UploadedAt.Display(); got != "01.05.2024 10:00" {
		t.Errorf("docs[1].UploadedAt.Display() = %q, ожидалась строка backend", got)
	}
	if docs[2].UploadedAt.IsZero() {
		t.Error("docs[2].UploadedAt не разобрано")
	}
}

// TestUploadDocument_Multipart проверяет поля multipart-формы.
func TestUploadDocument_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/documents/" {
			t.Errorf("запрос = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("title"); got != "Квартальный отчёт" {
			t.Errorf("title = %q", got)
		}

		var tags map[string]string
		if err := json.Unmarshal([]byte(r.FormValue("tags")), &tags); err != nil {
			t.Errorf("tags не JSON: %v", err)
		}
		if tags["1"] != "HR" || tags["3"] != "2024" || len(tags) != 2 {
			t.Errorf("tags = %v", tags)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "report.pdf" || string(content) != "%PDF-1.4" {
			t.Errorf("file = %s %q", header.Filename, content)
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "title": "Квартальный отчёт", "filename": "report.pdf"})
	}, "tok", nil)

	doc, err := client.UploadDocument(context.Background(), Upload{
		Title:    "Квартальный отчёт",
		Filename: "report.pdf",
		Content:  strings.NewReader("%PDF-1.4"),
		Tags:     map[int]string{1: "HR", 3: "2024"},
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if doc.ID != 7 {
		t.Errorf("doc.ID = %d, ожидалось 7", doc.ID)
	}
}

// TestUploadDocument_NoTags проверяет, что без тегов отправляется пустой объект.
func TestUploadDocument_NoTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("tags"); got != "{}" {
			t.Errorf("tags = %q, ожидалось {}", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1})
	}, "tok", nil)

	if _, err := client.UploadDocument(context.Background(), Upload{
		Title: "a", Filename: "a.txt", Content: strings.NewReader("x"),
	}); err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
}

// TestUploadDocument_Validation проверяет отказ без заголовка или файла.
func TestUploadDocument_Validation(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, "tok", nil)

	tests := []struct {
		name string
		up   Upload
	}{
		{"без заголовка", Upload{Filename: "a.txt", Content: strings.NewReader("x")}},
		{"пробельный заголовок", Upload{Title: "  ", Filename: "a.txt", Content: strings.NewReader("x")}},
		{"без файла", Upload{Title: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.UploadDocument(context.Background(), tt.up)
			if !errors.Is(err, ErrEmptyUpload) {
				t.Errorf("ошибка = %v, ожидалась ErrEmptyUpload", err)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("backend вызван %d раз, ожидалось 0", calls.Load())
	}
}

// TestUploadDocument_BackendError проверяет, что ошибка backend доходит до вызывающего.
func TestUploadDocument_BackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"detail": "file too large"})
	}, "tok", nil)

	_, err := client.UploadDocument(context.Background(), Upload{
		Title: "a", Filename: "a.txt", Content: strings.NewReader("x"),
	})
	if got := apiclient.StatusCode(err); got != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode = %d, ожидалось 413", got)
	}
	if got := apiclient.Detail(err); got != "file too large" {
		t.Errorf("Detail = %q", got)
	}
}

// TestTagDefinitions_Cache проверяет кэширование списка и сброс после создания.
func TestTagDefinitions_Cache(t *testing.T) {
	var listCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listCalls.Add(1)
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "dept", "label": "Department"}})
		case http.MethodPost:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "year" || body["label"] != "Year" {
				t.Errorf("тело = %v", body)
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "name": "year", "label": "Year"})
		}
	}, "tok", NewTagCache(16, time.Minute))

	ctx := context.Background()
	for range 3 {
		defs, err := client.ListTagDefinitions(ctx)
		if err != nil {
			t.Fatalf("ListTagDefinitions: %v", err)
		}
		if len(defs) != 1 || defs[0].Label != "Department" {
			t.Fatalf("defs = %+v", defs)
		}
	}
	if listCalls.Load() != 1 {
		t.Errorf("GET /meta-tags/ вызван %d раз, ожидалось 1", listCalls.Load())
	}

	def, err := client.CreateTagDefinition(ctx, "year", "Year")
	if err != nil {
		t.Fatalf("CreateTagDefinition: %v", err)
	}
	if def.ID != 2 {
		t.Errorf("def.ID = %d", def.ID)
	}

	if _, err := client.ListTagDefinitions(ctx); err != nil {
		t.Fatalf("ListTagDefinitions: %v", err)
	}
	if listCalls.Load() != 2 {
		t.Errorf("после создания GET вызван %d раз, ожидалось 2", listCalls.Load())
	}
}

// TestTagCache_PerCredential проверяет разделение кэша по учётным данным.
func TestTagCache_PerCredential(t *testing.T) {
	cache := NewTagCache(16, time.Minute)
	cache.Set("a", nil)

	if _, ok := cache.Get("b"); ok {
		t.Error("ключ b не должен находиться")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("ключ a должен находиться")
	}
	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("Len() = %d после Purge", cache.Len())
	}
}

// TestDownloadURL проверяет построение ссылки на скачивание.
func TestDownloadURL(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {}, "", nil)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"простое имя", "report.pdf", "http://127.0.0.1:8000/uploads/report.pdf"},
		{"пробел", "my report.pdf", "http://127.0.0.1:8000/uploads/my%20report.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.DownloadURL(tt.filename); got != tt.want {
				t.Errorf("DownloadURL(%q) = %q, ожидалось %q", tt.filename, got, tt.want)
			}
		})
	}
}

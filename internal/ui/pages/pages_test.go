package pages

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/aventuscto/doc-console/internal/docquery"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/ui/i18n"
)

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(html, p) {
			t.Errorf("страница не содержит %q", p)
		}
	}
}

func intPtr(v int) *int { return &v }

func TestLogin_NoNavigation(t *testing.T) {
	html := renderString(t, context.Background(), Login(LoginData{Username: "alice", Error: "boom"}))

	assertContains(t, html, `action="/login"`, `value="alice"`, "boom", "login.submit")
	if strings.Contains(html, `action="/logout"`) {
		t.Error("страница входа не должна показывать навигацию")
	}
}

func TestDashboard(t *testing.T) {
	data := DashboardData{
		Layout: Layout{DisplayName: "alice"},
		Alert:  Alert{Notice: "Upload successful!"},
		DocumentList: DocumentList{
			Documents: []DocumentRow{{
				Document: model.Document{
					ID:         1,
					Title:      "Отчёт",
					Filename:   "report.pdf",
					UploadedAt: model.Timestamp{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
					Tags: []model.DocumentTag{
						{TagDefinition: &model.TagDefinition{ID: 1, Name: "dept", Label: "Department"}, Value: "HR"},
					},
				},
				URL: "http://files/uploads/report.pdf",
			}, {
				Document: model.Document{
					ID:         2,
					Title:      "Счёт",
					Filename:   "invoice.pdf",
					UploadedAt: model.Timestamp{Raw: "01.05.2024 10:00"},
				},
				URL: "http://files/uploads/invoice.pdf",
			}},
			Empty: "documents.empty",
		},
		DocTitle:  "Draft",
		Available: []model.TagDefinition{{ID: 2, Name: "year", Label: "Year"}},
		Tags:      []TagRow{{ID: 1, Name: "dept", Label: "Department", Value: "HR"}},
	}

	html := renderString(t, context.Background(), Dashboard(data))

	assertContains(t, html,
		"Upload successful!",
		`value="Draft"`,
		`<option value="2">Year</option>`,
		`name="tag_id" value="1"`,
		`name="tag_value" value="HR"`,
		`name="remove_tag" value="1"`,
		"Отчёт",
		"report.pdf",
		"2026-01-02 03:04:05",
		"01.05.2024 10:00",
		`href="http://files/uploads/report.pdf"`,
		`class="active" aria-current="page"`,
		"alice",
	)
}

func TestDashboard_EmptyList(t *testing.T) {
	html := renderString(t, context.Background(), Dashboard(DashboardData{
		Layout:       Layout{DisplayName: "u"},
		DocumentList: DocumentList{Empty: "documents.empty", LoadError: "backend down"},
	}))
	assertContains(t, html, "documents.empty", "backend down", "upload.tags.empty")
	if strings.Contains(html, `name="new_tag"`) {
		t.Error("без доступных определений выбор тега не показывается")
	}
}

func TestSearch(t *testing.T) {
	html := renderString(t, context.Background(), Search(SearchData{
		Layout:       Layout{DisplayName: "u"},
		DocumentList: DocumentList{Empty: "search.empty"},
		Filename:     "report",
		StartDate:    "2026-01-01",
		Searched:     true,
		Applied:      docquery.Filter{Tag: "HR"},
	}))
	assertContains(t, html, `value="report"`, `value="2026-01-01"`, "search.empty",
		`name="reset" value="1"`, `name="applied_tag" value="HR"`)

	html = renderString(t, context.Background(), Search(SearchData{Layout: Layout{DisplayName: "u"}}))
	assertContains(t, html, "search.hint")
}

func TestUsers(t *testing.T) {
	html := renderString(t, context.Background(), Users(UsersData{
		Layout: Layout{DisplayName: "u"},
		Alert:  Alert{Error: "username taken"},
		Users: []model.User{
			{ID: 1, Username: "alice", IsActive: true, GroupID: intPtr(2), Group: &model.Group{ID: 2, Name: "HR"}},
			{ID: 2, Username: "bob"},
		},
		Groups:  []model.Group{{ID: 2, Name: "HR"}},
		GroupID: 2,
	}))
	assertContains(t, html, "username taken", "alice", "users.active", "users.inactive", "users.no_group",
		`<option value="2" selected>HR</option>`)
}

func TestGroupsAndRoles_Selection(t *testing.T) {
	html := renderString(t, context.Background(), Groups(GroupsData{
		Layout:   Layout{DisplayName: "u"},
		Groups:   []model.Group{{ID: 1, Name: "Ops"}},
		Roles:    []model.Role{{ID: 5, Name: "editor"}, {ID: 6, Name: "viewer"}},
		Selected: []int{6},
	}))
	assertContains(t, html, `name="role_id" value="6" checked`, `name="role_id" value="5">`, "groups.list.no_roles")

	html = renderString(t, context.Background(), Roles(RolesData{
		Layout:      Layout{DisplayName: "u"},
		Roles:       []model.Role{{ID: 1, Name: "editor", Permissions: []model.Permission{{ID: 3, Name: "docs:write"}}}},
		Permissions: []model.Permission{{ID: 3, Name: "docs:write", Description: "Write"}},
		Selected:    []int{3},
	}))
	assertContains(t, html, `name="permission_id" value="3" checked`, "docs:write")
}

func TestTags(t *testing.T) {
	html := renderString(t, context.Background(), Tags(TagsData{
		Layout:      Layout{DisplayName: "u"},
		Definitions: []model.TagDefinition{{ID: 1, Name: "department", Label: "Department"}},
		Name:        "year",
	}))
	assertContains(t, html, "department", "Department", `value="year"`)
}

func TestTranslatedLayout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bundle, err := i18n.Load(logger)
	if err != nil {
		t.Fatalf("i18n.Load: %v", err)
	}
	ctx := i18n.WithLang(i18n.WithBundle(context.Background(), bundle), "ru")

	html := renderString(t, ctx, Dashboard(DashboardData{
		Layout:       Layout{DisplayName: "alice"},
		Alert:        Alert{Notice: "Upload successful!"},
		DocumentList: DocumentList{Empty: "documents.empty"},
	}))
	assertContains(t, html, `lang="ru"`, "Здравствуйте, alice", "Документ загружен!", "Документов пока нет.",
		`value="en"`, `value="ru"`)
}

func TestRender_Escapes(t *testing.T) {
	html := renderString(t, context.Background(), Tags(TagsData{
		Layout:      Layout{DisplayName: "<script>"},
		Definitions: []model.TagDefinition{{ID: 1, Name: "<b>x</b>", Label: "y"}},
	}))
	if strings.Contains(html, "<b>x</b>") || strings.Contains(html, "<script>") {
		t.Error("пользовательские данные должны экранироваться")
	}
}

package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/domain/model"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient создаёт клиент user-service, направленный на mock-сервер.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := apiclient.New(apiclient.ServiceUsers, server.URL, apiclient.StaticToken("tok"),
		apiclient.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return New(api, "", testLogger())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// signedToken создаёт JWT для тестов (подпись не проверяется клиентом).
func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

// TestLogin_Form проверяет форму запроса токена и построение Credential.
func TestLogin_Form(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	accessToken := signedToken(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()})

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/token" {
			t.Errorf("запрос = %s %s, ожидался POST /token", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "pw" {
			t.Errorf("форма = %v", r.PostForm)
		}
		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
	})

	cred, err := client.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if cred.Token != accessToken {
		t.Errorf("Token не совпадает с access_token")
	}
	if cred.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, ожидалось alice", cred.DisplayName)
	}
	if !cred.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, ожидалось %v", cred.ExpiresAt, exp)
	}
}

// TestLogin_BadCredentials проверяет передачу detail при ошибке входа.
func TestLogin_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	})

	_, err := client.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Errorf("ошибка = %v, ожидалась ErrUnauthorized", err)
	}
	if got := apiclient.Detail(err); got != "Incorrect username or password" {
		t.Errorf("Detail = %q", got)
	}
}

// TestLogin_EmptyToken проверяет ответ без access_token.
func TestLogin_EmptyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token_type": "bearer"})
	})

	if _, err := client.Login(context.Background(), "alice", "pw"); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("ошибка = %v, ожидалась ErrEmptyToken", err)
	}
}

// TestCredentialFromToken проверяет выбор отображаемого имени и срока действия.
func TestCredentialFromToken(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		token      func(t *testing.T) string
		username   string
		wantName   string
		wantExpiry bool
	}{
		{
			name:     "непрозрачный токен, имя из формы",
			token:    func(*testing.T) string { return "opaque-token" },
			username: "bob",
			wantName: "bob",
		},
		{
			name:     "непрозрачный токен без имени",
			token:    func(*testing.T) string { return "opaque-token" },
			wantName: model.DefaultDisplayName,
		},
		{
			name: "имя из preferred_username",
			token: func(t *testing.T) string {
				return signedToken(t, jwt.MapClaims{"preferred_username": "carol", "exp": exp.Unix()})
			},
			wantName:   "carol",
			wantExpiry: true,
		},
		{
			name: "JWT без exp",
			token: func(t *testing.T) string {
				return signedToken(t, jwt.MapClaims{"sub": "dave"})
			},
			username: "  ",
			wantName: "dave",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := credentialFromToken(tt.token(t), tt.username)
			if cred.DisplayName != tt.wantName {
				t.Errorf("DisplayName = %q, ожидалось %q", cred.DisplayName, tt.wantName)
			}
			if got := !cred.ExpiresAt.IsZero(); got != tt.wantExpiry {
				t.Errorf("ExpiresAt известен = %v, ожидалось %v", got, tt.wantExpiry)
			}
			if tt.wantExpiry && !cred.ExpiresAt.Equal(exp) {
				t.Errorf("ExpiresAt = %v, ожидалось %v", cred.ExpiresAt, exp)
			}
		})
	}
}

// TestCreateUser_Payload проверяет тело POST /users/ с группой и без неё.
func TestCreateUser_Payload(t *testing.T) {
	var bodies []map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/" {
			t.Errorf("запрос = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, map[string]any{"id": len(bodies), "username": body["username"], "is_active": true})
	})

	groupID := 2
	ctx := context.Background()
	if _, err := client.CreateUser(ctx, CreateUserRequest{Username: "alice", Password: "pw", GroupID: &groupID}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	user, err := client.CreateUser(ctx, CreateUserRequest{Username: "bob", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 2 || !user.IsActive {
		t.Errorf("user = %+v", user)
	}

	if bodies[0]["group_id"] != float64(2) || bodies[0]["password"] != "pw" {
		t.Errorf("тело с группой = %v", bodies[0])
	}
	if v, ok := bodies[1]["group_id"]; !ok || v != nil {
		t.Errorf("group_id без группы = %v (присутствует: %v), ожидался null", v, ok)
	}
}

// TestCreateGroupAndRole_Payload проверяет, что пустой выбор отправляется как [].
func TestCreateGroupAndRole_Payload(t *testing.T) {
	bodies := map[string]map[string]any{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies[r.URL.Path] = body
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": body["name"]})
	})

	ctx := context.Background()
	if _, err := client.CreateGroup(ctx, CreateGroupRequest{Name: "editors"}); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := client.CreateRole(ctx, CreateRoleRequest{Name: "viewer", PermissionIDs: []int{3, 1}}); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	if ids, ok := bodies["/groups/"]["role_ids"].([]any); !ok || len(ids) != 0 {
		t.Errorf("role_ids = %#v, ожидался пустой массив", bodies["/groups/"]["role_ids"])
	}
	ids, _ := bodies["/roles/"]["permission_ids"].([]any)
	if len(ids) != 2 || ids[0] != float64(3) || ids[1] != float64(1) {
		t.Errorf("permission_ids = %#v, ожидалось [3 1]", ids)
	}
}

// TestLists проверяет GET коллекций и развёрнутые связи.
func TestLists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "username": "alice", "is_active": true, "group": map[string]any{"id": 2, "name": "editors"}},
			})
		case "/groups/":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 2, "name": "editors", "roles": []map[string]any{{"id": 5, "name": "writer"}}},
			})
		case "/roles/":
			_, _ = w.Write([]byte(`null`))
		case "/permissions/":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "read", "description": "Read documents"}})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	users, err := client.ListUsers(ctx)
	if err != nil || len(users) != 1 || users[0].GroupName() != "editors" {
		t.Errorf("ListUsers = %+v, %v", users, err)
	}
	groups, err := client.ListGroups(ctx)
	if err != nil || len(groups) != 1 || groups[0].Roles[0].Name != "writer" {
		t.Errorf("ListGroups = %+v, %v", groups, err)
	}
	roles, err := client.ListRoles(ctx)
	if err != nil || roles == nil || len(roles) != 0 {
		t.Errorf("ListRoles = %#v, %v", roles, err)
	}
	perms, err := client.ListPermissions(ctx)
	if err != nil || len(perms) != 1 || perms[0].Description != "Read documents" {
		t.Errorf("ListPermissions = %+v, %v", perms, err)
	}
}

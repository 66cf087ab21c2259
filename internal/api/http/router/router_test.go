package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpctx "github.com/dtroode/identity-server/internal/api/http/context"
	"github.com/dtroode/identity-server/internal/hasher"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/policy"
	"github.com/dtroode/identity-server/internal/repository/memory"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/testutil"
	"github.com/dtroode/identity-server/internal/token"
)

const testAdminKey = "k3y"

type stack struct {
	app   *fiber.App
	store *memory.UserRepository
	jwt   *token.JWT
}

func newStack(t *testing.T) stack {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	store := memory.NewUserRepository()

	h, err := hasher.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	jwt, err := token.NewJWT("test-secret", "identity-server", "identity-server", time.Hour)
	require.NoError(t, err)

	users := service.NewUsers(store, h, testAdminKey, lg)
	auth := service.NewAuth(store, h, jwt, lg)
	gate := policy.NewGate(policy.NewOwnership(store, nil, lg))

	app := New(users, auth, jwt, gate, httpctx.NewManager(), Timeouts{}, lg).Register()
	return stack{app: app, store: store, jwt: jwt}
}

func (s stack) do(t *testing.T, method, target, bearer string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s stack) createUser(t *testing.T, target, userName, password string) string {
	t.Helper()

	status, raw := s.do(t, fiber.MethodPost, target, "", map[string]string{
		"userName":  userName,
		"password":  password,
		"firstName": "First",
		"lastName":  "Last",
		"email":     userName + "@example.com",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func (s stack) login(t *testing.T, userName, password string) string {
	t.Helper()

	status, raw := s.do(t, fiber.MethodPost, "/api/users/login", "", map[string]string{
		"userName": userName,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Token
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := New(nil, nil, nil, nil, httpctx.NewManager(), Timeouts{}, testutil.MakeNoopLogger())

	got := make(map[string]string)
	for _, route := range r.Routes() {
		got[route.Method+" "+route.Path] = route.Requirement.String()
		assert.NotNil(t, route.Handler, route.Path)
	}

	assert.Equal(t, map[string]string{
		"POST /users":                   policy.Anonymous().String(),
		"POST /users/login":             policy.Anonymous().String(),
		"GET /users/:id":                policy.Owner().String(),
		"PUT /users/:id":                policy.Owner().String(),
		"DELETE /users/:id":             policy.Owner().String(),
		"PUT /users/updatepassword/:id": policy.Owner().String(),
		"POST /admins":                  policy.Anonymous().String(),
		"GET /admins":                   policy.Role(model.RoleAdmin).String(),
		"GET /healthz":                  policy.Anonymous().String(),
	}, got)
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	require.NotNil(t, s.app)

	status, _ := s.do(t, fiber.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestEndToEnd_OwnerAccess(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	aliceID := s.createUser(t, "/api/users", "alice", "alice-pw")
	bobID := s.createUser(t, "/api/users", "bob", "bob-pw")

	aliceToken := s.login(t, "alice", "alice-pw")

	principal, err := s.jwt.Validate(aliceToken)
	require.NoError(t, err)
	stored, err := s.store.FindByID(t.Context(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, stored.Role, principal.Role)
	assert.Equal(t, aliceID, principal.SubjectID)

	status, raw := s.do(t, fiber.MethodGet, "/api/users/"+aliceID, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(raw), stored.PasswordHash)

	status, _ = s.do(t, fiber.MethodGet, "/api/users/"+bobID, aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/users/"+aliceID, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/users/"+aliceID, "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, fiber.MethodPut, "/api/users/"+bobID, aliceToken, map[string]string{
		"firstName": "Mallory", "lastName": "X", "email": "m@example.com",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, fiber.MethodDelete, "/api/users/"+bobID, aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestEndToEnd_RoleGating(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	s.createUser(t, "/api/users", "alice", "alice-pw")
	aliceToken := s.login(t, "alice", "alice-pw")

	status, _ := s.do(t, fiber.MethodGet, "/api/admins", aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, fiber.MethodPost, "/api/admins?adminKey=wrong", "", map[string]string{
		"userName": "eve", "password": "pw", "firstName": "E", "lastName": "V", "email": "eve@example.com",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	s.createUser(t, "/api/admins?adminKey="+testAdminKey, "root", "root-pw")
	rootToken := s.login(t, "root", "root-pw")

	principal, err := s.jwt.Validate(rootToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, principal.Role)

	status, raw := s.do(t, fiber.MethodGet, "/api/admins", rootToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(raw, &listed))
	assert.Len(t, listed, 2)
}

func TestEndToEnd_LoginSecrecy(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	s.createUser(t, "/api/users", "alice", "alice-pw")

	ghostStatus, ghostBody := s.do(t, fiber.MethodPost, "/api/users/login", "", map[string]string{
		"userName": "ghost", "password": "whatever",
	})
	wrongStatus, wrongBody := s.do(t, fiber.MethodPost, "/api/users/login", "", map[string]string{
		"userName": "alice", "password": "wrong",
	})

	assert.Equal(t, fiber.StatusUnauthorized, ghostStatus)
	assert.Equal(t, ghostStatus, wrongStatus)
	assert.JSONEq(t, string(ghostBody), string(wrongBody))

	token := s.login(t, "ALICE", "alice-pw")
	assert.NotEmpty(t, token)
}

func TestEndToEnd_LoginRejectsPasswordExtendingStoredOne(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	password := strings.Repeat("c", hasher.MaxPasswordBytes)
	s.createUser(t, "/api/users", "carol", password)

	status, raw := s.do(t, fiber.MethodPost, "/api/users/login", "", map[string]string{
		"userName": "carol", "password": password + "-not-the-password",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotContains(t, string(raw), "token")

	assert.NotEmpty(t, s.login(t, "carol", password))
}

func TestEndToEnd_DuplicateUserName(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	s.createUser(t, "/api/users", "alice", "alice-pw")

	status, _ := s.do(t, fiber.MethodPost, "/api/users", "", map[string]string{
		"userName": "Alice", "password": "pw", "firstName": "A", "lastName": "L", "email": "a@example.com",
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestEndToEnd_UpdatePasswordAndDelete(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	aliceID := s.createUser(t, "/api/users", "alice", "old-pw")
	s.createUser(t, "/api/users", "bob", "bob-pw")
	aliceToken := s.login(t, "alice", "old-pw")

	status, _ := s.do(t, fiber.MethodPut, "/api/users/updatepassword/"+aliceID, aliceToken, map[string]string{
		"userName": "bob", "oldPassword": "bob-pw", "newPassword": "pwned",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, fiber.MethodPut, "/api/users/updatepassword/"+aliceID, aliceToken, map[string]string{
		"userName": "alice", "oldPassword": "nope", "newPassword": "new-pw",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, fiber.MethodPut, "/api/users/updatepassword/"+aliceID, aliceToken, map[string]string{
		"userName": "alice", "oldPassword": "old-pw", "newPassword": "new-pw",
	})
	require.Equal(t, fiber.StatusNoContent, status)

	s.login(t, "alice", "new-pw")
	s.login(t, "bob", "bob-pw")

	status, _ = s.do(t, fiber.MethodDelete, "/api/users/"+aliceID, aliceToken, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	// The token outlives the record, but ownership is checked against the store.
	status, _ = s.do(t, fiber.MethodGet, "/api/users/"+aliceID, aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

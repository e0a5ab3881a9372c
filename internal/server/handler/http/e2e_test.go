package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/db"
	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/password"
	"github.com/atinyakov/TodoKeeper/internal/repository"
	handler "github.com/atinyakov/TodoKeeper/internal/server/handler/http"
	"github.com/atinyakov/TodoKeeper/internal/service"
	"github.com/atinyakov/TodoKeeper/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	srv    *httptest.Server
	users  *repository.SQLUserRepository
	hasher *password.Hasher
	// skew shifts the token clock forward, in nanoseconds.
	skew atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, _, err := db.Open("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	env := &testEnv{}
	clock := func() time.Time { return time.Now().Add(time.Duration(env.skew.Load())) }

	tokens, err := token.NewManager([]byte("e2e-secret"), time.Hour, token.WithClock(clock))
	require.NoError(t, err)

	env.hasher = password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	env.users = repository.NewSQLUserRepository(conn)
	todoRepo := repository.NewSQLTodoRepository(conn)
	bookRepo := repository.NewSQLBookRepository(conn)

	authSvc := service.NewAuthService(env.users, env.hasher, tokens)
	todoSvc := service.NewTodoService(todoRepo)
	userSvc := service.NewUserService(env.users, env.hasher)
	bookSvc := service.NewBookService(bookRepo)

	m := metrics.New(prometheus.NewRegistry())
	log := zap.NewNop()

	router := handler.NewRouter(handler.Handlers{
		Auth:   &handler.AuthHandler{AuthService: authSvc, TokenTTL: tokens.TTL(), Metrics: m, Logger: log},
		Todo:   &handler.TodoHandler{TodoService: todoSvc, Logger: log},
		User:   &handler.UserHandler{UserService: userSvc, Logger: log},
		Admin:  &handler.AdminHandler{TodoService: todoSvc, Logger: log},
		Book:   &handler.BookHandler{BookService: bookSvc, Logger: log},
		Health: &handler.HealthHandler{DB: conn, Logger: log},
	}, tokens, userSvc, m, log)

	env.srv = httptest.NewServer(router)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, tok string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := nethttp.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	res, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, data
}

func (e *testEnv) register(t *testing.T, username, pw, role string) models.User {
	t.Helper()
	res, data := e.do(t, "POST", "/auth/register", "", map[string]string{
		"username": username, "password": pw, "role": role,
	})
	require.Equal(t, nethttp.StatusCreated, res.StatusCode, string(data))
	var u models.User
	require.NoError(t, json.Unmarshal(data, &u))
	return u
}

func (e *testEnv) login(t *testing.T, username, pw string) string {
	t.Helper()
	res, data := e.postForm(t, username, pw)
	require.Equal(t, nethttp.StatusOK, res.StatusCode, string(data))
	var tr handler.TokenResponse
	require.NoError(t, json.Unmarshal(data, &tr))
	require.Equal(t, "bearer", tr.TokenType)
	return tr.AccessToken
}

func (e *testEnv) postForm(t *testing.T, username, pw string) (*nethttp.Response, []byte) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {pw}}
	res, err := e.srv.Client().Post(e.srv.URL+"/auth/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, data
}

func TestAliceScenario(t *testing.T) {
	env := newTestEnv(t)

	alice := env.register(t, "alice", "pw12345678", "user")
	assert.Equal(t, models.RoleUser, alice.Role)
	tok := env.login(t, "alice", "pw12345678")

	res, data := env.do(t, "POST", "/todos", tok, map[string]any{
		"title": "Buy milk", "description": "2%", "priority": 3, "complete": false,
	})
	require.Equal(t, nethttp.StatusCreated, res.StatusCode, string(data))
	var created models.Todo
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, int64(1), created.ID)

	res, data = env.do(t, "GET", "/todos", tok, nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	var list []models.Todo
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].OwnerID)
	assert.False(t, list[0].Complete)

	res, _ = env.do(t, "PUT", "/todos/1", tok, map[string]any{
		"title": "Buy milk", "description": "2%", "priority": 3, "complete": true,
	})
	require.Equal(t, nethttp.StatusNoContent, res.StatusCode)

	res, data = env.do(t, "GET", "/todos/1", tok, nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	var updated models.Todo
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.True(t, updated.Complete)

	res, _ = env.do(t, "DELETE", "/todos/1", tok, nil)
	require.Equal(t, nethttp.StatusNoContent, res.StatusCode)

	res, _ = env.do(t, "GET", "/todos/1", tok, nil)
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
}

func TestStoredHashIsNotPlaintext(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "")

	u, err := env.users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw12345678", u.PasswordHash)

	ok, err := env.hasher.Verify("pw12345678", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.hasher.Verify("wrong-password", u.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")
	env.register(t, "bob", "pw87654321", "user")
	aTok := env.login(t, "alice", "pw12345678")
	bTok := env.login(t, "bob", "pw87654321")

	res, _ := env.do(t, "POST", "/todos", aTok, map[string]any{"title": "Alice task", "priority": 1})
	require.Equal(t, nethttp.StatusCreated, res.StatusCode)
	res, _ = env.do(t, "POST", "/todos", bTok, map[string]any{"title": "Bob task", "priority": 2})
	require.Equal(t, nethttp.StatusCreated, res.StatusCode)

	_, data := env.do(t, "GET", "/todos", aTok, nil)
	var list []models.Todo
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Alice task", list[0].Title)

	// todo 2 belongs to bob
	res, _ = env.do(t, "GET", "/todos/2", aTok, nil)
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
	res, _ = env.do(t, "PUT", "/todos/2", aTok, map[string]any{"title": "Hijacked", "priority": 1})
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
	res, _ = env.do(t, "DELETE", "/todos/2", aTok, nil)
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)

	_, data = env.do(t, "GET", "/todos/2", bTok, nil)
	var bobs models.Todo
	require.NoError(t, json.Unmarshal(data, &bobs))
	assert.Equal(t, "Bob task", bobs.Title)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")
	env.register(t, "root", "rootpassword", "admin")
	aTok := env.login(t, "alice", "pw12345678")
	rTok := env.login(t, "root", "rootpassword")

	env.do(t, "POST", "/todos", aTok, map[string]any{"title": "Alice task", "priority": 1})
	env.do(t, "POST", "/todos", rTok, map[string]any{"title": "Root task", "priority": 5})

	res, _ := env.do(t, "GET", "/admin/todos", aTok, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)

	res, data := env.do(t, "GET", "/admin/todos", rTok, nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	var all []models.Todo
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 2)

	res, _ = env.do(t, "DELETE", "/admin/todos/1", aTok, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)
	res, _ = env.do(t, "DELETE", "/admin/todos/1", rTok, nil)
	assert.Equal(t, nethttp.StatusNoContent, res.StatusCode)
	res, _ = env.do(t, "DELETE", "/admin/todos/1", rTok, nil)
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")
	tok := env.login(t, "alice", "pw12345678")

	before, err := env.users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)

	res, _ := env.do(t, "PUT", "/user/password", tok, map[string]string{
		"current_password": "not-my-password", "new_password": "newpw12345",
	})
	assert.Equal(t, nethttp.StatusBadRequest, res.StatusCode)
	unchanged, err := env.users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, unchanged.PasswordHash)

	res, _ = env.do(t, "PUT", "/user/password", tok, map[string]string{
		"current_password": "pw12345678", "new_password": "newpw12345",
	})
	require.Equal(t, nethttp.StatusNoContent, res.StatusCode)

	res, _ = env.postForm(t, "alice", "pw12345678")
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)
	env.login(t, "alice", "newpw12345")
}

func TestProfileAndPhone(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")
	tok := env.login(t, "alice", "pw12345678")

	res, _ := env.do(t, "PUT", "/user/phone", tok, map[string]string{
		"current_password": "wrong-password", "new_phone": "5551234567",
	})
	assert.Equal(t, nethttp.StatusBadRequest, res.StatusCode)

	res, _ = env.do(t, "PUT", "/user/phone", tok, map[string]string{
		"current_password": "pw12345678", "new_phone": "5551234567",
	})
	require.Equal(t, nethttp.StatusNoContent, res.StatusCode)

	res, data := env.do(t, "GET", "/user/profile", tok, nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.NotContains(t, string(data), "argon2id")
	var u models.User
	require.NoError(t, json.Unmarshal(data, &u))
	require.NotNil(t, u.PhoneNumber)
	assert.Equal(t, "5551234567", *u.PhoneNumber)
}

func TestAuthFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")
	tok := env.login(t, "alice", "pw12345678")

	res, _ := env.do(t, "GET", "/todos", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)

	res, _ = env.do(t, "GET", "/todos", tok+"x", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)

	env.skew.Store(int64(61 * time.Minute))
	res, data := env.do(t, "GET", "/todos", tok, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, string(data), "token expired")

	res, _ = env.postForm(t, "mallory", "pw12345678")
	assert.Equal(t, nethttp.StatusUnauthorized, res.StatusCode)
}

func TestRegistrationConflictsAndContentType(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "pw12345678", "user")

	res, _ := env.do(t, "POST", "/auth/", "", map[string]string{"username": "alice", "password": "pw12345678"})
	assert.Equal(t, nethttp.StatusConflict, res.StatusCode)

	res, err := env.srv.Client().Post(env.srv.URL+"/auth/register", "text/plain", strings.NewReader("alice"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, nethttp.StatusUnsupportedMediaType, res.StatusCode)
}

func TestPublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	res, data := env.do(t, "GET", "/books", "", nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	var books []models.Book
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Len(t, books, 6)

	res, _ = env.do(t, "GET", "/books/99", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)

	res, _ = env.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)

	res, data = env.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.Contains(t, string(data), "todokeeper_http_requests_total")
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/taskdeck-be/internal/auth"
	"github.com/isdelr/taskdeck-be/internal/database"
	"github.com/isdelr/taskdeck-be/internal/models"
	"github.com/isdelr/taskdeck-be/internal/services"
)

const testSecret = "router-test-secret"

var testDBCounter atomic.Int64

type testServer struct {
	router http.Handler
	issuer *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.New("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	issuer := auth.NewIssuer(testSecret, time.Hour)
	router := NewRouter(
		issuer,
		services.NewUserService(db),
		services.NewCategoryService(db),
		services.NewTaskService(db),
		"http://localhost:3000",
	)
	return &testServer{router: router, issuer: issuer}
}

// do performs a JSON request; token may be empty for public endpoints.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns a bearer token for them.
func (ts *testServer) signup(t *testing.T, username, password string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/auth", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type categoryResp struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type taskResp struct {
	ID           uint    `json:"id"`
	Text         string  `json:"text"`
	Done         bool    `json:"done"`
	CategoryID   *uint   `json:"category_id"`
	CategoryName *string `json:"category_name"`
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth", "", map[string]string{
		"username": "alice", "password": "supersecret",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")

	// Same username again, different password: still a conflict.
	rec = ts.do(t, http.MethodPost, "/auth", "", map[string]string{
		"username": "alice", "password": "otherpassword",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_InvalidPayload(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"username": "alice"}},
		{"missing username", map[string]string{"password": "supersecret"}},
		{"short password", map[string]string{"username": "alice", "password": "short"}},
		{"short username", map[string]string{"username": "al", "password": "supersecret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/auth", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice", "supersecret")

	rec := ts.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "alice", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "nobody", "password": "supersecret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/tasks", "/categories", "/users/me"} {
		rec := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice", "supersecret")

	// Correctly signed but already past its expiry.
	stale := auth.NewIssuer(testSecret, -time.Minute)
	token, err := stale.Issue(models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/tasks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgedTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice", "supersecret")

	forged := auth.NewIssuer("some-other-secret", time.Hour)
	token, err := forged.Issue(models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/tasks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryLifecycleScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice", "pw1secret")

	// Create category "Work".
	rec := ts.do(t, http.MethodPost, "/categories", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	work := decode[categoryResp](t, rec)
	assert.Equal(t, "Work", work.Name)
	require.NotZero(t, work.ID)

	// Create a task filed under it.
	rec = ts.do(t, http.MethodPost, "/tasks", token, map[string]interface{}{
		"text":        "finish report",
		"category_id": work.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[taskResp](t, rec)
	assert.Equal(t, "finish report", task.Text)
	assert.False(t, task.Done)
	require.NotNil(t, task.CategoryID)
	assert.Equal(t, work.ID, *task.CategoryID)
	require.NotNil(t, task.CategoryName)
	assert.Equal(t, "Work", *task.CategoryName)

	// Delete the category.
	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d", work.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The task survives, uncategorized.
	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[taskResp](t, rec)
	assert.Equal(t, "finish report", got.Text)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.CategoryName)
}

func TestCrossUserResourcesLookMissing(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.signup(t, "alice", "pw1secret")
	bobToken := ts.signup(t, "bob", "pw2secret")

	rec := ts.do(t, http.MethodPost, "/categories", aliceToken, map[string]string{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	category := decode[categoryResp](t, rec)

	rec = ts.do(t, http.MethodPost, "/tasks", aliceToken, map[string]string{"text": "secret plan"})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[taskResp](t, rec)

	catPath := fmt.Sprintf("/categories/%d", category.ID)
	taskPath := fmt.Sprintf("/tasks/%d", task.ID)

	// Get, update and delete through bob's token: all 404, never 403.
	for _, tc := range []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, catPath, nil},
		{http.MethodPatch, catPath, map[string]string{"name": "Mine"}},
		{http.MethodDelete, catPath, nil},
		{http.MethodGet, taskPath, nil},
		{http.MethodPatch, taskPath, map[string]bool{"done": true}},
		{http.MethodDelete, taskPath, nil},
	} {
		rec := ts.do(t, tc.method, tc.path, bobToken, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}

	// Creating a task against alice's category also misses.
	rec = ts.do(t, http.MethodPost, "/tasks", bobToken, map[string]interface{}{
		"text":        "borrow category",
		"category_id": category.ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Nothing leaked into bob's listings.
	rec = ts.do(t, http.MethodGet, "/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]taskResp](t, rec))
}

func TestTaskPatch(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice", "pw1secret")

	rec := ts.do(t, http.MethodPost, "/tasks", token, map[string]interface{}{
		"text": "write tests", "done": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[taskResp](t, rec)
	path := fmt.Sprintf("/tasks/%d", task.ID)

	// done:false must take effect, not be treated as "unset".
	rec = ts.do(t, http.MethodPatch, path, token, map[string]bool{"done": false})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[taskResp](t, rec)
	assert.False(t, patched.Done)
	assert.Equal(t, "write tests", patched.Text)

	// null text is rejected rather than silently ignored.
	rec = ts.do(t, http.MethodPatch, path, token, map[string]interface{}{"text": nil})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown task id under the owner's filter: 404.
	rec = ts.do(t, http.MethodPatch, "/tasks/9999", token, map[string]bool{"done": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-numeric id: 400.
	rec = ts.do(t, http.MethodGet, "/tasks/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasksByCategory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice", "pw1secret")

	rec := ts.do(t, http.MethodPost, "/categories", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	work := decode[categoryResp](t, rec)

	for _, text := range []string{"report", "slides"} {
		rec := ts.do(t, http.MethodPost, "/tasks", token, map[string]interface{}{
			"text": text, "category_id": work.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = ts.do(t, http.MethodPost, "/tasks", token, map[string]string{"text": "unfiled"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/tasks/category/%d", work.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]taskResp](t, rec), 2)
}

func TestUsersMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice", "pw1secret")

	rec := ts.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")

	// Deleting the account invalidates further lookups.
	rec = ts.do(t, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecamp/todo-cli/internal/models"
)

func newTestServer(t *testing.T, opts ...Option) (*Backend, *httptest.Server) {
	t.Helper()
	b := NewBackend(DefaultSeed(), opts...)
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetTodoAndItems(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/todos/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todo models.Todo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todo))
	assert.Equal(t, "Groceries", todo.Title)

	resp = doJSON(t, http.MethodGet, srv.URL+"/todos/1/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []models.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 3)
	assert.Equal(t, "Milk", items[0].Title)
}

func TestUnknownTodoIsNotFound(t *testing.T) {
	_, srv := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/todos/99", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/todos/99/items", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, srv.URL+"/todos/abc", "").StatusCode)
}

func TestCreateUpdateDelete(t *testing.T) {
	b, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/todos/1/items", `{"title":"Eggs"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Eggs", created.Title)
	assert.Greater(t, created.ID, int64(5))

	resp = doJSON(t, http.MethodPut, srv.URL+"/todos/1/items/1", `{"completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/todos/1/items/2", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	items := b.Items(1)
	require.Len(t, items, 3)
	assert.True(t, items[0].Completed)
	assert.Equal(t, "Oat milk", items[1].Title)
	assert.Equal(t, "Eggs", items[2].Title)
}

func TestCreateRequiresTitle(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/todos/1/items", `{"title":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFailInjection(t *testing.T) {
	b, srv := newTestServer(t)

	b.Fail(http.MethodPost, http.StatusInternalServerError)
	resp := doJSON(t, http.MethodPost, srv.URL+"/todos/1/items", `{"title":"Eggs"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Len(t, b.Items(1), 3)

	// Reads are unaffected.
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/todos/1", "").StatusCode)

	b.Fail(http.MethodPost, 0)
	resp = doJSON(t, http.MethodPost, srv.URL+"/todos/1/items", `{"title":"Eggs"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, b.Calls("POST /todos/{id}/items"))
}

func TestTokenRequired(t *testing.T) {
	_, srv := newTestServer(t, WithToken("secret"))

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, srv.URL+"/todos/1", "").StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/todos/1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerMountsUnderPrefix(t *testing.T) {
	s := NewServer(NewBackend(DefaultSeed()), "127.0.0.1:0", "api")
	_, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	assert.True(t, strings.HasSuffix(s.BaseURL(), "/api"))
	resp := doJSON(t, http.MethodGet, s.BaseURL()+"/todos/2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
todos:
  - id: 7
    title: Weekend
    items:
      - id: 1
        title: Hike
      - id: 2
        title: Laundry
        completed: true
`), 0o600))

	seed, err := LoadSeed(yamlPath)
	require.NoError(t, err)
	require.Len(t, seed.Todos, 1)
	assert.Equal(t, int64(7), seed.Todos[0].ID)
	assert.True(t, seed.Todos[0].Items[1].Completed)

	jsonPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"todos":[{"id":1,"title":"A","items":[]}]}`), 0o600))
	seed, err = LoadSeed(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "A", seed.Todos[0].Title)
}

func TestLoadSeedRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "seed.txt")
	require.NoError(t, os.WriteFile(txt, []byte("todos: []"), 0o600))
	_, err := LoadSeed(txt)
	assert.ErrorContains(t, err, "unsupported seed file format")

	dup := filepath.Join(dir, "dup.yml")
	require.NoError(t, os.WriteFile(dup, []byte("todos:\n  - id: 1\n  - id: 1\n"), 0o600))
	_, err = LoadSeed(dup)
	assert.ErrorContains(t, err, "duplicate id")

	_, err = LoadSeed(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

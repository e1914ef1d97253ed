package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecamp/todo-cli/internal/api/mock"
	"github.com/basecamp/todo-cli/internal/output"
)

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

func newMockClient(t *testing.T, opts ...mock.Option) (*Client, *mock.Backend) {
	t.Helper()
	backend := mock.NewBackend(mock.DefaultSeed(), opts...)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c, backend
}

func TestGetTodoAndItems(t *testing.T) {
	c, _ := newMockClient(t)
	ctx := context.Background()

	todo, err := c.GetTodo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", todo.Title)

	items, err := c.GetItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Milk", "Bread", "Oat milk"}, []string{items[0].Title, items[1].Title, items[2].Title})
}

func TestGetTodoNotFound(t *testing.T) {
	c, _ := newMockClient(t)

	_, err := c.GetTodo(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, output.IsNotFound(err))
	assert.Contains(t, err.Error(), "Todo not found: 42")

	_, err = c.GetItems(context.Background(), 42)
	assert.True(t, output.IsNotFound(err))
}

func TestNullBodyIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.GetTodo(context.Background(), 1)
	assert.True(t, output.IsNotFound(err))
	_, err = c.GetItems(context.Background(), 1)
	assert.True(t, output.IsNotFound(err))
}

func TestMutations(t *testing.T) {
	c, backend := newMockClient(t)
	ctx := context.Background()

	created, err := c.CreateItem(ctx, 1, "Eggs")
	require.NoError(t, err)
	assert.Equal(t, "Eggs", created.Title)
	assert.False(t, created.Completed)

	updated, err := c.UpdateItem(ctx, 1, created.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, c.DeleteItem(ctx, 1, 1))

	items := backend.Items(1)
	require.Len(t, items, 3)
	assert.Equal(t, "Bread", items[0].Title)
	assert.Equal(t, created.ID, items[2].ID)
	assert.True(t, items[2].Completed)
}

func TestMutationsAreNotRetried(t *testing.T) {
	c, backend := newMockClient(t)
	backend.Fail(http.MethodPost, http.StatusServiceUnavailable)

	_, err := c.CreateItem(context.Background(), 1, "Eggs")
	require.Error(t, err)
	assert.True(t, output.AsError(err).Retryable)
	assert.Equal(t, 1, backend.Calls("POST /todos/{id}/items"))
}

func TestReadsAreRetried(t *testing.T) {
	c, backend := newMockClient(t)
	backend.Fail(http.MethodGet, http.StatusBadGateway)

	_, err := c.GetTodo(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, defaultMaxRetries, backend.Calls("GET /todos/{id}"))
}

func TestReadRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"title":"Groceries"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.backoff = func(int) time.Duration { return time.Millisecond }

	todo, err := c.GetTodo(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", todo.Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStatusMapping(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized:        output.CodeAuth,
		http.StatusForbidden:           output.CodeForbidden,
		http.StatusTooManyRequests:     output.CodeRateLimit,
		http.StatusInternalServerError: output.CodeAPI,
	}
	for status, code := range cases {
		c, backend := newMockClient(t)
		backend.Fail(http.MethodDelete, status)

		err := c.DeleteItem(context.Background(), 1, 1)
		require.Error(t, err, "status %d", status)
		assert.Equal(t, code, output.AsError(err).Code, "status %d", status)
	}
}

func TestAPIErrorMessageFromBody(t *testing.T) {
	c, _ := newMockClient(t)

	_, err := c.CreateItem(context.Background(), 1, "")
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, output.CodeAPI, e.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.HTTPStatus)
	assert.Contains(t, e.Message, "title is required")
}

func TestBearerTokenAndUserAgent(t *testing.T) {
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"id":1,"title":"x"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, WithTokenProvider(staticToken("abc")))
	_, err := c.GetTodo(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Contains(t, gotUA, "todo/")
	assert.Equal(t, srv.URL, c.BaseURL())
}

func TestMockTokenEnforced(t *testing.T) {
	c, _ := newMockClient(t, mock.WithToken("secret"))

	_, err := c.GetTodo(context.Background(), 1)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)

	c.tokens = staticToken("secret")
	_, err = c.GetTodo(context.Background(), 1)
	assert.NoError(t, err)
}

func TestNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, WithMaxRetries(1))
	err := c.DeleteItem(context.Background(), 1, 1)
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, output.CodeNetwork, e.Code)
	assert.True(t, e.Retryable)
}

func TestCanceledContext(t *testing.T) {
	c, _ := newMockClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetTodo(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitOption(t *testing.T) {
	c := NewClient("http://example.invalid", time.Second, WithRateLimit(5, 0))
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())

	c = NewClient("http://example.invalid", time.Second, WithRateLimit(0, 3))
	assert.Nil(t, c.limiter)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 0, parseRetryAfter(""))
	assert.Equal(t, 30, parseRetryAfter("30"))
	assert.Equal(t, 0, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

package mock

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/basecamp/todo-cli/internal/models"
)

type todoRecord struct {
	todo  models.Todo
	items []models.Item
}

// Backend is an in-memory implementation of the to-do HTTP API.
type Backend struct {
	mu       sync.Mutex
	todos    map[int64]*todoRecord
	nextItem int64

	token   string
	latency time.Duration
	faults  map[string]int // method -> status to answer with
	calls   map[string]int // "METHOD /pattern" -> count
	logger  *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(b *Backend) { b.token = token }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(b *Backend) { b.latency = d }
}

// WithLogger logs each request.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// NewBackend creates a Backend loaded with seed.
func NewBackend(seed *Seed, opts ...Option) *Backend {
	b := &Backend{
		todos:  make(map[int64]*todoRecord),
		faults: make(map[string]int),
		calls:  make(map[string]int),
		logger: slog.New(slog.DiscardHandler),
	}
	if seed == nil {
		seed = &Seed{}
	}
	for _, t := range seed.Todos {
		rec := &todoRecord{todo: models.Todo{ID: t.ID, Title: t.Title}, items: []models.Item{}}
		for _, it := range t.Items {
			rec.items = append(rec.items, models.Item{ID: it.ID, Title: it.Title, Completed: it.Completed})
			if it.ID > b.nextItem {
				b.nextItem = it.ID
			}
		}
		b.todos[t.ID] = rec
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fail makes every request with method answer with status until cleared
// with Fail(method, 0).
func (b *Backend) Fail(method string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.faults, method)
		return
	}
	b.faults[method] = status
}

// Calls returns how many requests hit the route, e.g. "GET /todos/{id}/items".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// Items returns a copy of a to-do's items in storage order.
func (b *Backend) Items(todoID int64) []models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.todos[todoID]
	if !ok {
		return nil
	}
	return models.CloneItems(rec.items)
}

// Handler returns the HTTP handler serving the API.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	b.route(mux, "GET /todos/{id}", b.getTodo)
	b.route(mux, "GET /todos/{id}/items", b.getItems)
	b.route(mux, "POST /todos/{id}/items", b.createItem)
	b.route(mux, "PUT /todos/{id}/items/{itemID}", b.updateItem)
	b.route(mux, "DELETE /todos/{id}/items/{itemID}", b.deleteItem)
	return mux
}

func (b *Backend) route(mux *http.ServeMux, pattern string, h func(http.ResponseWriter, *http.Request)) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		b.mu.Lock()
		b.calls[pattern]++
		status, faulty := b.faults[r.Method]
		b.mu.Unlock()

		if b.latency > 0 {
			time.Sleep(b.latency)
		}
		defer func() {
			b.logger.Info("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
		}()

		if b.token != "" && r.Header.Get("Authorization") != "Bearer "+b.token {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		if faulty {
			writeError(w, status, "injected failure")
			return
		}
		h(w, r)
	})
}

func (b *Backend) getTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	rec, found := b.todos[id]
	var todo models.Todo
	if found {
		todo = rec.todo
	}
	b.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (b *Backend) getItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items := b.Items(id)
	if items == nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	b.mu.Lock()
	rec, found := b.todos[id]
	var item models.Item
	if found {
		b.nextItem++
		item = models.Item{ID: b.nextItem, Title: req.Title}
		rec.items = append(rec.items, item)
	}
	b.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req models.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b.mu.Lock()
	item, found := b.mutateItem(id, itemID, func(it *models.Item) { it.Completed = req.Completed })
	b.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	b.mu.Lock()
	found := false
	if rec, ok := b.todos[id]; ok {
		for i := range rec.items {
			if rec.items[i].ID == itemID {
				rec.items = append(rec.items[:i], rec.items[i+1:]...)
				found = true
				break
			}
		}
	}
	b.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutateItem applies fn to the matching item. Caller holds b.mu.
func (b *Backend) mutateItem(todoID, itemID int64, fn func(*models.Item)) (models.Item, bool) {
	rec, ok := b.todos[todoID]
	if !ok {
		return models.Item{}, false
	}
	for i := range rec.items {
		if rec.items[i].ID == itemID {
			fn(&rec.items[i])
			return rec.items[i], true
		}
	}
	return models.Item{}, false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

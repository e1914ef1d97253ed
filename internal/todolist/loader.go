package todolist

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/basecamp/todo-cli/internal/models"
	"github.com/basecamp/todo-cli/internal/output"
)

// Source fetches a to-do and its items.
type Source interface {
	GetTodo(ctx context.Context, todoID int64) (models.Todo, error)
	GetItems(ctx context.Context, todoID int64) ([]models.Item, error)
}

// Page is the data behind a to-do's detail page.
type Page struct {
	Todo  models.Todo   `json:"todo"`
	Items []models.Item `json:"items"`
}

// Load fetches the to-do and its items in parallel. Items are returned
// newest first, the reverse of the backend's order. If either half is
// missing the result is a not-found error matching ErrNotFound.
func Load(ctx context.Context, src Source, todoID int64) (*Page, error) {
	var page Page

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		todo, err := src.GetTodo(gctx, todoID)
		page.Todo = todo
		return err
	})
	g.Go(func() error {
		items, err := src.GetItems(gctx, todoID)
		page.Items = items
		return err
	})

	if err := g.Wait(); err != nil {
		if output.IsNotFound(err) || errors.Is(err, ErrNotFound) {
			return nil, notFound(todoID)
		}
		return nil, err
	}
	if page.Items == nil {
		return nil, notFound(todoID)
	}

	page.Items = models.CloneItems(page.Items)
	slices.Reverse(page.Items)
	return &page, nil
}

func notFound(todoID int64) error {
	e := output.ErrNotFound("Todo", strconv.FormatInt(todoID, 10))
	e.Cause = ErrNotFound
	return e
}

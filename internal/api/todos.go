package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/basecamp/todo-cli/internal/models"
	"github.com/basecamp/todo-cli/internal/output"
)

func todoPath(todoID int64) string {
	return fmt.Sprintf("/todos/%d", todoID)
}

func itemsPath(todoID int64) string {
	return fmt.Sprintf("/todos/%d/items", todoID)
}

func itemPath(todoID, itemID int64) string {
	return fmt.Sprintf("/todos/%d/items/%d", todoID, itemID)
}

// GetTodo fetches a single to-do. A 404 or a null body is reported as
// output.ErrNotFound.
func (c *Client) GetTodo(ctx context.Context, todoID int64) (models.Todo, error) {
	var todo *models.Todo
	if err := c.Get(ctx, todoPath(todoID), &todo); err != nil {
		if output.IsNotFound(err) {
			return models.Todo{}, output.ErrNotFound("Todo", strconv.FormatInt(todoID, 10))
		}
		return models.Todo{}, err
	}
	if todo == nil {
		return models.Todo{}, output.ErrNotFound("Todo", strconv.FormatInt(todoID, 10))
	}
	return *todo, nil
}

// GetItems fetches a to-do's items in the order the backend returns them.
// An empty list is valid; a 404 or null body is reported as not found.
func (c *Client) GetItems(ctx context.Context, todoID int64) ([]models.Item, error) {
	var items *[]models.Item
	if err := c.Get(ctx, itemsPath(todoID), &items); err != nil {
		if output.IsNotFound(err) {
			return nil, output.ErrNotFound("Items for todo", strconv.FormatInt(todoID, 10))
		}
		return nil, err
	}
	if items == nil {
		return nil, output.ErrNotFound("Items for todo", strconv.FormatInt(todoID, 10))
	}
	if *items == nil {
		return []models.Item{}, nil
	}
	return *items, nil
}

// CreateItem adds an item to a to-do.
func (c *Client) CreateItem(ctx context.Context, todoID int64, title string) (models.Item, error) {
	var item models.Item
	err := c.Post(ctx, itemsPath(todoID), models.CreateItemRequest{Title: title}, &item)
	return item, err
}

// UpdateItem sets an item's completed flag.
func (c *Client) UpdateItem(ctx context.Context, todoID, itemID int64, completed bool) (models.Item, error) {
	var item models.Item
	err := c.Put(ctx, itemPath(todoID, itemID), models.UpdateItemRequest{Completed: completed}, &item)
	return item, err
}

// DeleteItem removes an item from a to-do.
func (c *Client) DeleteItem(ctx context.Context, todoID, itemID int64) error {
	return c.Delete(ctx, itemPath(todoID, itemID))
}

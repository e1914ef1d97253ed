package todolist

import (
	"context"

	"github.com/basecamp/todo-cli/internal/models"
)

// Backend performs item mutations against the server.
type Backend interface {
	CreateItem(ctx context.Context, todoID int64, title string) (models.Item, error)
	UpdateItem(ctx context.Context, todoID, itemID int64, completed bool) (models.Item, error)
	DeleteItem(ctx context.Context, todoID, itemID int64) error
}

// Mutation is a change to a to-do's items with a local and a remote step.
type Mutation interface {
	// Op names the mutation in errors and logs.
	Op() string

	// Target is the affected item ID, zero when there is none yet.
	Target() int64

	// ApplyLocally returns the visible list with the change applied.
	ApplyLocally(visible []models.Item) []models.Item

	// ApplyRemotely sends the change to the backend.
	ApplyRemotely(ctx context.Context, backend Backend, todoID int64) error
}

// CreateItemMutation adds an item. It has no local step: the new item only
// appears once a refresh brings it back.
type CreateItemMutation struct {
	Title string
}

func (m CreateItemMutation) Op() string    { return "create" }
func (m CreateItemMutation) Target() int64 { return 0 }

func (m CreateItemMutation) ApplyLocally(visible []models.Item) []models.Item {
	return visible
}

func (m CreateItemMutation) ApplyRemotely(ctx context.Context, backend Backend, todoID int64) error {
	_, err := backend.CreateItem(ctx, todoID, m.Title)
	return err
}

// ToggleCompleteMutation sets an item's completed flag.
type ToggleCompleteMutation struct {
	ItemID    int64
	Completed bool
}

func (m ToggleCompleteMutation) Op() string    { return "toggle" }
func (m ToggleCompleteMutation) Target() int64 { return m.ItemID }

// ApplyLocally sets the flag on the matching visible entry. Items not
// currently visible are left alone.
func (m ToggleCompleteMutation) ApplyLocally(visible []models.Item) []models.Item {
	result := models.CloneItems(visible)
	for i := range result {
		if result[i].ID == m.ItemID {
			result[i].Completed = m.Completed
			break
		}
	}
	return result
}

func (m ToggleCompleteMutation) ApplyRemotely(ctx context.Context, backend Backend, todoID int64) error {
	_, err := backend.UpdateItem(ctx, todoID, m.ItemID, m.Completed)
	return err
}

// DeleteItemMutation removes an item.
type DeleteItemMutation struct {
	ItemID int64
}

func (m DeleteItemMutation) Op() string    { return "delete" }
func (m DeleteItemMutation) Target() int64 { return m.ItemID }

func (m DeleteItemMutation) ApplyLocally(visible []models.Item) []models.Item {
	result := make([]models.Item, 0, len(visible))
	for _, it := range visible {
		if it.ID != m.ItemID {
			result = append(result, it)
		}
	}
	return result
}

func (m DeleteItemMutation) ApplyRemotely(ctx context.Context, backend Backend, todoID int64) error {
	return backend.DeleteItem(ctx, todoID, m.ItemID)
}

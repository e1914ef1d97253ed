// Package models provides canonical type definitions for to-do API entities.
package models

// Todo is a to-do list. It is read-only from the client's point of view.
type Todo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Item is a single entry on a to-do list.
type Item struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// CreateItemRequest is the body of an item create call.
type CreateItemRequest struct {
	Title string `json:"title"`
}

// UpdateItemRequest is the body of an item update call.
type UpdateItemRequest struct {
	Completed bool `json:"completed"`
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

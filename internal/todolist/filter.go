package todolist

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/basecamp/todo-cli/internal/models"
)

// FilterItems returns the items whose title contains term, compared with
// Unicode case folding. Relative order is preserved. An empty term returns a
// copy of items.
func FilterItems(items []models.Item, term string) []models.Item {
	if term == "" {
		return models.CloneItems(items)
	}

	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(fold.String(it.Title), needle) {
			out = append(out, it)
		}
	}
	return out
}

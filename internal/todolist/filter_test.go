package todolist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/basecamp/todo-cli/internal/models"
)

func TestFilterItems(t *testing.T) {
	items := []models.Item{
		{ID: 1, Title: "Straße fegen"},
		{ID: 2, Title: "STRASSE"},
		{ID: 3, Title: "Milk"},
	}

	assert.Equal(t, []string{"Milk"}, titles(FilterItems(items, "ilk")))
	assert.Equal(t, []string{"Straße fegen", "STRASSE"}, titles(FilterItems(items, "strasse")))
	assert.Empty(t, FilterItems(items, "cheese"))
	assert.Equal(t, items, FilterItems(items, ""))
}

func TestFilterItemsEveryResultMatches(t *testing.T) {
	items := sampleItems()
	for _, term := range []string{"m", "E", "oat", "k", "zz"} {
		for _, it := range FilterItems(items, term) {
			assert.True(t, containsFold(it.Title, term), "%q should match %q", it.Title, term)
		}
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

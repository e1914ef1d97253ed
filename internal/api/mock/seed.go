// Package mock provides an in-memory to-do backend served over HTTP.
// It backs the mock-server command and the HTTP tests of other packages.
package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is the initial data set loaded into a Backend.
type Seed struct {
	Todos []SeedTodo `yaml:"todos" json:"todos"`
}

// SeedTodo is a to-do with its items, in backend storage order.
type SeedTodo struct {
	ID    int64      `yaml:"id" json:"id"`
	Title string     `yaml:"title" json:"title"`
	Items []SeedItem `yaml:"items" json:"items"`
}

// SeedItem is a single seeded item.
type SeedItem struct {
	ID        int64  `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Completed bool   `yaml:"completed" json:"completed"`
}

// LoadSeed reads a seed file. The format is chosen by extension.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied seed file
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON seed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	todoIDs := make(map[int64]bool)
	for i, t := range s.Todos {
		if t.ID <= 0 {
			return fmt.Errorf("todo %d: id must be positive", i)
		}
		if todoIDs[t.ID] {
			return fmt.Errorf("todo %d: duplicate id %d", i, t.ID)
		}
		todoIDs[t.ID] = true

		itemIDs := make(map[int64]bool)
		for j, it := range t.Items {
			if it.ID <= 0 {
				return fmt.Errorf("todo %d item %d: id must be positive", t.ID, j)
			}
			if itemIDs[it.ID] {
				return fmt.Errorf("todo %d item %d: duplicate id %d", t.ID, j, it.ID)
			}
			itemIDs[it.ID] = true
		}
	}
	return nil
}

// DefaultSeed is served when no seed file is given.
func DefaultSeed() *Seed {
	return &Seed{Todos: []SeedTodo{
		{ID: 1, Title: "Groceries", Items: []SeedItem{
			{ID: 1, Title: "Milk"},
			{ID: 2, Title: "Bread"},
			{ID: 3, Title: "Oat milk", Completed: true},
		}},
		{ID: 2, Title: "Release checklist", Items: []SeedItem{
			{ID: 4, Title: "Tag the release"},
			{ID: 5, Title: "Write the changelog"},
		}},
	}}
}

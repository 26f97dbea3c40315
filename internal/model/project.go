package model

import (
	"fmt"
	"sync"
	"time"
)

// DefaultFavoriteCommands are the favorite commands a new project starts with.
var DefaultFavoriteCommands = []string{
	"gulp watch",
	"au run --watch",
	"npm start",
	"dotnet restore",
	"gulp prepare-release",
}

// Project represents a project the application manages and runs commands against.
type Project struct {
	ID               string
	Name             string
	Path             string
	FavoriteCommands []string
	CreatedAt        time.Time

	// Meta is the runtime metadata bag that components use to attach their own
	// state to the project (e.g. the task manager history). It's not persisted.
	Meta *Meta
}

// Validate validates the project.
func (p Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}

	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}

	if p.Path == "" {
		return fmt.Errorf("path is required: %w", ErrNotValid)
	}

	return nil
}

// IsFavorite returns true if the command description is one of the project favorites.
func (p Project) IsFavorite(description string) bool {
	for _, f := range p.FavoriteCommands {
		if f == description {
			return true
		}
	}
	return false
}

// Meta is a concurrency safe key-value bag.
type Meta struct {
	mu     sync.Mutex
	values map[string]any
}

// LoadOrStore returns the value stored under key, if missing it stores and
// returns the value created by newFn.
func (m *Meta) LoadOrStore(key string, newFn func() any) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values == nil {
		m.values = map[string]any{}
	}

	v, ok := m.values[key]
	if !ok {
		v = newFn()
		m.values[key] = v
	}

	return v
}

// Load returns the value stored under key.
func (m *Meta) Load(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok
}

var metaInitMu sync.Mutex

// Metadata returns the project metadata bag, creating it on first use.
func (p *Project) Metadata() *Meta {
	metaInitMu.Lock()
	defer metaInitMu.Unlock()

	if p.Meta == nil {
		p.Meta = &Meta{}
	}

	return p.Meta
}

package flowcatalog

import (
	"context"
	"sync"

	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
)

// Catalog serves category flow lookups from a one-shot cached fetch. A failed
// fetch is retried on the next Load call; a successful fetch is kept for the
// process lifetime.
type Catalog struct {
	source Source

	mu      sync.RWMutex
	entries map[string]CategoryFlowConfig
	loaded  bool
}

// NewCatalog wraps a source with session-lifetime caching.
func NewCatalog(source Source) (*Catalog, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source required")
	}
	return &Catalog{source: source}, nil
}

// Load fetches the flow configuration if it has not been cached yet.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	entries, err := c.source.Fetch(ctx)
	if err != nil {
		return err
	}
	c.entries = entries
	c.loaded = true
	return nil
}

// Lookup returns the flow config for a category. Categories without an entry
// simply have no setup question; that is not an error.
func (c *Catalog) Lookup(category string) (CategoryFlowConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.entries[category]
	return cfg, ok
}

// Option resolves a category's option by key.
func (c *Catalog) Option(category, optionKey string) (CategoryFlowOption, bool) {
	cfg, ok := c.Lookup(category)
	if !ok {
		return CategoryFlowOption{}, false
	}
	for _, option := range cfg.Options {
		if option.Key == optionKey {
			return option, true
		}
	}
	return CategoryFlowOption{}, false
}

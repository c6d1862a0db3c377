package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"golang.org/x/sync/singleflight"
)

// DefinitionCache keeps definition tables for the life of the process. Paths are
// versioned upstream, so an entry never goes stale and is never evicted.
type DefinitionCache struct {
	source ports.ReferenceSource

	mu      sync.RWMutex
	entries map[string]domain.DefinitionTable
	flight  singleflight.Group
}

func NewDefinitionCache(source ports.ReferenceSource) *DefinitionCache {
	return &DefinitionCache{
		source:  source,
		entries: map[string]domain.DefinitionTable{},
	}
}

// Get returns the table at path, fetching it on first use. Concurrent misses on
// the same path share one fetch. Failed fetches are not cached.
func (c *DefinitionCache) Get(ctx context.Context, path string) (domain.DefinitionTable, error) {
	if table, ok := c.lookup(path); ok {
		definitionCacheLookups.WithLabelValues("hit").Inc()
		return table, nil
	}
	definitionCacheLookups.WithLabelValues("miss").Inc()

	// The shared fetch outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(path, func() (interface{}, error) {
		if table, ok := c.lookup(path); ok {
			return table, nil
		}

		slogx.FromContext(fetchCtx).Debug("fetching definitions", "path", path)
		table, err := c.source.FetchDefinitions(fetchCtx, path)
		if err != nil {
			definitionFetches.WithLabelValues("error").Inc()
			return nil, err
		}
		definitionFetches.WithLabelValues("ok").Inc()

		c.mu.Lock()
		c.entries[path] = table
		c.mu.Unlock()

		return table, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, fmt.Errorf("fetch definitions %s: %w", path, result.Err)
		}
		return result.Val.(domain.DefinitionTable), nil
	}
}

func (c *DefinitionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *DefinitionCache) lookup(path string) (domain.DefinitionTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.entries[path]
	return table, ok
}

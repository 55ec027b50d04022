package embedding

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc creates an embedder for a model identifier.
type LoadFunc func(ctx context.Context, modelID string) (Embedder, error)

// Cache holds one embedder per model identifier for the life of the process.
// Concurrent first requests for the same identifier share a single load and
// the cache lock is never held while a model loads or embeds.
type Cache struct {
	mu     sync.Mutex
	models map[string]Embedder
	group  singleflight.Group
	load   LoadFunc
}

func NewCache(load LoadFunc) *Cache {
	return &Cache{models: make(map[string]Embedder), load: load}
}

func (c *Cache) lookup(modelID string) (Embedder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.models[modelID]
	return m, ok
}

// Get returns the cached embedder for modelID, loading it on first use.
// A failed load is not cached; the next call tries again.
func (c *Cache) Get(ctx context.Context, modelID string) (Embedder, error) {
	if m, ok := c.lookup(modelID); ok {
		return m, nil
	}
	ch := c.group.DoChan(modelID, func() (interface{}, error) {
		if m, ok := c.lookup(modelID); ok {
			return m, nil
		}
		// The load outlives a caller that gives up waiting.
		m, err := c.load(context.WithoutCancel(ctx), modelID)
		if err != nil {
			log.Printf("❌ Failed to load embedding model %s: %v", modelID, err)
			return nil, err
		}
		c.mu.Lock()
		c.models[modelID] = m
		c.mu.Unlock()
		log.Printf("🧠 Embedding model loaded: %s (dim=%d)", modelID, m.Dimensions())
		return m, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Embedder), nil
	}
}

// Loaded reports the identifiers currently cached.
func (c *Cache) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	return ids
}

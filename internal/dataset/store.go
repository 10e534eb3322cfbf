package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wikilytics/wikiclass/pkg/logging"
)

// Cache stores immutable load results keyed by source identity. The
// cache is injected into the Store so memoization stays explicit rather
// than living in package-global state.
type Cache interface {
	Get(key string) (*Table, bool)
	Put(key string, table *Table)
}

// MemoryCache is the default in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Table
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Table)}
}

func (c *MemoryCache) Get(key string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.entries[key]
	return table, ok
}

func (c *MemoryCache) Put(key string, table *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = table
}

// Store memoizes Load against source path and modification time, so
// repeated loads within a session are free and an updated file is
// picked up on the next request.
type Store struct {
	schema Schema
	cache  Cache
	mu     sync.Mutex
}

// NewStore creates a Store with the given schema and cache. A nil cache
// falls back to an in-process MemoryCache.
func NewStore(schema Schema, cache Cache) *Store {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Store{schema: schema, cache: cache}
}

// Load returns the memoized table for path, loading it on first use or
// when the file's modification time changed.
func (s *Store) Load(path string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := cacheKey(path)
	if err != nil {
		return nil, err
	}

	if table, ok := s.cache.Get(key); ok {
		logger := logging.GetDatasetLogger(path)
		logger.Debug().Msg("Dataset cache hit")
		return table, nil
	}

	table, err := Load(path, s.schema)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, table)
	return table, nil
}

func cacheKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving dataset path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat dataset: %w", err)
	}
	return fmt.Sprintf("%s|%d", abs, info.ModTime().UnixNano()), nil
}

package page

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/pagination"
	"github.com/SanteonNL/querykit/query/types"
)

// Cache keeps complete, already filtered and ordered result sets so that
// following pages of the same search are cut from memory.
type Cache[T any] struct {
	entries  sync.Map // map[string]*ResultSet[T]
	config   CacheConfig
	log      zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// ResultSet is one cached search result.
type ResultSet[T any] struct {
	key       string
	Items     []T
	Issues    []Issue
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CacheConfig struct {
	// Enabled false bypasses the cache completely.
	Enabled bool

	// DefaultTTL is how long a result set stays valid.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of result sets kept; the oldest are
	// removed first. 0 means unlimited.
	MaxSize int

	// CleanupInterval is how often expired entries are removed and MaxSize
	// is enforced.
	CleanupInterval time.Duration
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:         true,
		DefaultTTL:      15 * time.Minute,
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewCache creates a cache and starts its cleanup routine when enabled.
func NewCache[T any](config CacheConfig, log zerolog.Logger) *Cache[T] {
	cache := &Cache[T]{
		config:   config,
		log:      log.With().Str("component", "page_cache").Logger(),
		stopChan: make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go cache.startCleanupRoutine()
		cache.log.Info().
			Dur("interval", config.CleanupInterval).
			Int("max_size", config.MaxSize).
			Dur("ttl", config.DefaultTTL).
			Msg("Started cache cleanup routine")
	}

	return cache
}

func (c *Cache[T]) startCleanupRoutine() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopChan:
			c.log.Info().Msg("Stopping cache cleanup routine")
			return
		}
	}
}

func (c *Cache[T]) cleanup() {
	var (
		totalEntries   int
		expiredEntries int
		removedEntries int
		now            = time.Now()
		live           []*ResultSet[T]
	)

	c.entries.Range(func(key, value any) bool {
		totalEntries++
		resultSet := value.(*ResultSet[T])
		if now.After(resultSet.ExpiresAt) {
			c.entries.Delete(key)
			expiredEntries++
		} else {
			live = append(live, resultSet)
		}
		return true
	})

	if c.config.MaxSize > 0 && len(live) > c.config.MaxSize {
		slices.SortFunc(live, func(a, b *ResultSet[T]) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		for _, old := range live[:len(live)-c.config.MaxSize] {
			c.entries.Delete(old.key)
			removedEntries++
		}
	}

	c.log.Debug().
		Int("total_entries", totalEntries).
		Int("expired_removed", expiredEntries).
		Int("size_limit_removed", removedEntries).
		Int("remaining_entries", len(live)-removedEntries).
		Msg("Completed cache cleanup")
}

func (c *Cache[T]) generateCacheKey(entity, search string) string {
	hasher := sha256.New()
	hasher.Write([]byte(entity + "\x00" + search))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Store keeps the complete result of search over entity.
func (c *Cache[T]) Store(entity, search string, items []T, issues []Issue) {
	if !c.config.Enabled {
		return
	}

	now := time.Now()
	cacheKey := c.generateCacheKey(entity, search)
	c.entries.Store(cacheKey, &ResultSet[T]{
		key:       cacheKey,
		Items:     items,
		Issues:    issues,
		CreatedAt: now,
		ExpiresAt: now.Add(c.config.DefaultTTL),
	})
	c.log.Debug().
		Str("key", cacheKey).
		Int("total_items", len(items)).
		Msg("Stored complete result set in cache")
}

// Page cuts page number of the given size from a cached result set. ok is
// false when nothing valid is cached for the search.
func (c *Cache[T]) Page(ctx context.Context, entity, search string, number, size int) (types.Page[T], []Issue, bool) {
	if !c.config.Enabled {
		return types.Page[T]{}, nil, false
	}

	cacheKey := c.generateCacheKey(entity, search)
	entry, ok := c.entries.Load(cacheKey)
	if !ok {
		return types.Page[T]{}, nil, false
	}
	resultSet := entry.(*ResultSet[T])
	if time.Now().After(resultSet.ExpiresAt) {
		c.entries.Delete(cacheKey)
		return types.Page[T]{}, nil, false
	}

	p, err := pagination.Paginate(ctx, query.FromSlice(resultSet.Items), number, size)
	if err != nil {
		return types.Page[T]{}, nil, false
	}

	c.log.Debug().
		Str("key", cacheKey).
		Int("number", number).
		Int("size", size).
		Int("returned_items", len(p.Data)).
		Msg("Retrieved page from cached result set")
	return p, resultSet.Issues, true
}

// Len counts the cached result sets, expired ones included.
func (c *Cache[T]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stop ends the cleanup routine and clears the cache.
func (c *Cache[T]) Stop() {
	c.stopOnce.Do(func() {
		if c.config.Enabled && c.config.CleanupInterval > 0 {
			close(c.stopChan)
		}
	})

	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})

	c.log.Info().Msg("Cache cleared and stopped")
}

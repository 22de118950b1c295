package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultMemoryTTL     = 10 * time.Minute
	defaultCleanupPeriod = time.Minute
)

// memoryClient envuelve go-cache con un tope de entradas. Al llenarse
// desaloja la entrada más próxima a expirar; el janitor de go-cache
// barre las expiradas cada CleanupInterval.
type memoryClient struct {
	mu         sync.Mutex // serializa check-and-insert y Take
	c          *gocache.Cache
	prefix     string
	defaultTTL time.Duration
	maxEntries int

	hits, misses, evictions atomic.Int64
}

func NewMemory(cfg Config) *memoryClient {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultCleanupPeriod
	}
	return &memoryClient{
		c:          gocache.New(ttl, cleanup),
		prefix:     cfg.Prefix,
		defaultTTL: ttl,
		maxEntries: cfg.MaxEntries,
	}
}

func (m *memoryClient) key(k string) string { return m.prefix + k }

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.key(key))
	if !ok {
		m.misses.Add(1)
		return "", ErrNotFound
	}
	m.hits.Add(1)
	return v.(string), nil
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	k := m.key(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxEntries > 0 {
		if _, exists := m.c.Get(k); !exists {
			// ItemCount cuenta expirados sin barrer pero Items los omite.
			if m.c.ItemCount() >= m.maxEntries {
				m.c.DeleteExpired()
			}
			for m.c.ItemCount() >= m.maxEntries {
				if !m.evictOne() {
					break
				}
			}
		}
	}
	m.c.Set(k, value, ttl)
	return nil
}

// evictOne borra la entrada con expiración más cercana. Caller tiene m.mu.
func (m *memoryClient) evictOne() bool {
	var (
		victim  string
		soonest int64
	)
	for k, it := range m.c.Items() {
		if victim == "" || it.Expiration < soonest {
			victim, soonest = k, it.Expiration
		}
	}
	if victim == "" {
		return false
	}
	m.c.Delete(victim)
	m.evictions.Add(1)
	return true
}

func (m *memoryClient) Take(_ context.Context, key string) (string, error) {
	k := m.key(key)
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		m.misses.Add(1)
		return "", ErrNotFound
	}
	m.c.Delete(k)
	m.hits.Add(1)
	return v.(string), nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(m.key(key))
	return nil
}

func (m *memoryClient) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(m.key(key))
	return ok, nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

// Close vacía el cache. El janitor de go-cache se detiene cuando el
// cliente deja de estar referenciado.
func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}

func (m *memoryClient) Stats(context.Context) (Stats, error) {
	return Stats{
		Driver:    "memory",
		Keys:      int64(m.c.ItemCount()),
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
	}, nil
}

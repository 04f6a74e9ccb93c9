package cache

import (
	"strings"
	"sync"
	"time"
)

const defaultTTL = 5 * time.Second

// TTL is a small in-process map whose entries expire ttl after they were set.
// Expired entries are dropped lazily on read and swept when the map is written.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ttlEntry[V]
}

type ttlEntry[V any] struct {
	val V
	exp time.Time
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TTL[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]ttlEntry[V]),
	}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.exp) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.val, true
}

func (c *TTL[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)
	c.entries[key] = ttlEntry[V]{val: val, exp: now.Add(c.ttl)}
}

// DeletePrefix drops every key starting with prefix.
func (c *TTL[V]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len counts live and not-yet-swept entries.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[V]) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.exp) {
			delete(c.entries, k)
		}
	}
}

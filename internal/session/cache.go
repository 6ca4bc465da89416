package session

import (
	"log"
	"sync"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/identity"
)

// Entries stay readable for ttl; the sweeper only reclaims memory, so it uses
// a much larger age bound (sweepAgeFactor * ttl).
const sweepAgeFactor = 5

type entry struct {
	session   *identity.Session
	createdAt time.Time
}

// Cache is a process-local store of resolved sessions keyed by token.
// All methods are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	sweepEvery time.Duration
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

func NewCache(ttl, sweepEvery time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Get returns the cached session for token, or false if there is no entry or
// the entry has outlived the TTL.
func (c *Cache) Get(token string) (*identity.Session, bool) {
	c.mu.RLock()
	e, ok := c.entries[token]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) >= c.ttl {
		return nil, false
	}

	return e.session, true
}

// Put stores or overwrites the entry for token with a fresh timestamp.
func (c *Cache) Put(token string, session *identity.Session) {
	c.mu.Lock()
	c.entries[token] = entry{session: session, createdAt: time.Now()}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches the periodic eviction task. Call Stop on shutdown.
func (c *Cache) StartSweeper() {
	go func() {
		defer close(c.done)

		ticker := time.NewTicker(c.sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				evicted := c.Sweep(time.Now())
				if evicted > 0 {
					log.Printf("session cache sweep evicted %d entries", evicted)
				}
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the sweeper and waits for it to exit.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

// Sweep evicts entries older than sweepAgeFactor*ttl and returns the count.
// Keys are snapshotted first so deletion never races an in-flight Get.
func (c *Cache) Sweep(now time.Time) int {
	cutoff := now.Add(-sweepAgeFactor * c.ttl)

	c.mu.RLock()
	stale := make([]string, 0)
	for token, e := range c.entries {
		if e.createdAt.Before(cutoff) {
			stale = append(stale, token)
		}
	}
	c.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}

	evicted := 0
	c.mu.Lock()
	for _, token := range stale {
		if e, ok := c.entries[token]; ok && e.createdAt.Before(cutoff) {
			delete(c.entries, token)
			evicted++
		}
	}
	c.mu.Unlock()

	return evicted
}

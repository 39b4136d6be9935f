package cache

import "sync"

// Chain names used as the Chain field of a HeadKey.
const (
	ChainTurn = "turns"
	ChainMine = "mines"
)

// HeadKey identifies one logical chain within a game. Slot is the mine number
// for mine chains and zero otherwise.
type HeadKey struct {
	GameID string
	Chain  string
	Slot   int
}

// Head is the newest committed row of a chain.
type Head struct {
	ID  uint
	Seq uint
}

// HeadCache remembers chain heads written by this process so that appends do not
// have to look up the previous version. Entries must only be set after the row
// that carries them has been committed.
type HeadCache struct {
	mu    sync.RWMutex
	heads map[HeadKey]Head
}

// NewHeadCache creates an empty HeadCache
func NewHeadCache() *HeadCache {
	return &HeadCache{
		heads: make(map[HeadKey]Head),
	}
}

// Get returns the cached head for k
func (c *HeadCache) Get(k HeadKey) (Head, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.heads[k]
	return h, ok
}

// Set records h as the head of k
func (c *HeadCache) Set(k HeadKey, h Head) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heads[k] = h
}

// SetAll records several heads at once, after a transaction commits.
func (c *HeadCache) SetAll(heads map[HeadKey]Head) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, h := range heads {
		c.heads[k] = h
	}
}

// ForgetGame drops every head belonging to gameID
func (c *HeadCache) ForgetGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.heads {
		if k.GameID == gameID {
			delete(c.heads, k)
		}
	}
}

// Len returns the number of cached heads
func (c *HeadCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.heads)
}

// Reset clears the cache
func (c *HeadCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heads = make(map[HeadKey]Head)
}

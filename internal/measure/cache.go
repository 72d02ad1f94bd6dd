package measure

import (
	"fmt"
	"sync"
	"time"

	"twmw/internal/series"
)

// Cache memoizes aligned frames per (role, range, frequency). It is an
// explicit object handed to the engine, never process-global state; a
// refresh is an explicit Invalidate followed by recomputation.
type Cache struct {
	mu     sync.RWMutex
	frames map[string]series.Frame
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{frames: make(map[string]series.Frame)}
}

func cacheKey(role Role, start, end time.Time, freq series.Frequency) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		role,
		series.Day(start).Format("2006-01-02"),
		series.Day(end).Format("2006-01-02"),
		freq)
}

// Get returns the cached frame for the arguments, if present.
func (c *Cache) Get(role Role, start, end time.Time, freq series.Frequency) (series.Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.frames[cacheKey(role, start, end, freq)]
	return f, ok
}

// Put stores a computed frame.
func (c *Cache) Put(role Role, start, end time.Time, freq series.Frequency, f series.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[cacheKey(role, start, end, freq)] = f
}

// Invalidate discards every cached frame.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = make(map[string]series.Frame)
}

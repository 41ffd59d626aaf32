// Package lru provides a small LRU set used to deduplicate log lines
// across polling cycles without unbounded memory growth.
package lru

import "container/list"

// Cache is a fixed-capacity LRU set of comparable keys.
type Cache[K comparable] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = newest, back = oldest
}

// New creates a cache holding at most capacity keys.
func New[K comparable](capacity int) *Cache[K] {
	return &Cache[K]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Contains reports whether key is present.
func (c *Cache[K]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Add inserts key, evicting the oldest entry when at capacity.
// Returns true when the key was newly added.
func (c *Cache[K]) Add(key K) bool {
	if c.capacity <= 0 {
		return false
	}

	if _, ok := c.items[key]; ok {
		return false
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(K))
			c.order.Remove(oldest)
		}
	}

	c.items[key] = c.order.PushFront(key)
	return true
}

// Len returns the number of keys currently held.
func (c *Cache[K]) Len() int {
	return len(c.items)
}

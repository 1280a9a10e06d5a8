// Package labelcache memoizes measured tick label extents.
//
// Tick labels repeat from frame to frame while the domain scrolls, so the
// composer measures each distinct (label, size) pair once and serves later
// frames from a bounded LRU.
package labelcache

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1024

// Key identifies one measurement.
type Key struct {
	Label string
	Size  float64
}

// Extent is a measured label box in logical pixels.
type Extent struct {
	Width, Height float64
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// node is an entry threaded on the recency list. head is the most recently
// used entry, tail the least.
type node struct {
	key        Key
	extent     Extent
	prev, next *node
}

// Cache is a bounded LRU of label extents. It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]*node
	head, tail *node
	capacity   int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most capacity extents.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[Key]*node, capacity),
		capacity: capacity,
	}
}

// Get returns the cached extent for k.
func (c *Cache) Get(k Key) (Extent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[k]
	if !ok {
		c.misses.Add(1)
		return Extent{}, false
	}
	c.touch(n)
	c.hits.Add(1)
	return n.extent, true
}

// Measure returns the cached extent for k, calling measure and storing its
// result on a miss. measure runs with the cache locked and must not call
// back into the cache.
func (c *Cache) Measure(k Key, measure func() Extent) Extent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[k]; ok {
		c.touch(n)
		c.hits.Add(1)
		return n.extent
	}
	c.misses.Add(1)
	e := measure()
	c.insert(k, e)
	return e
}

// Put stores an extent, replacing any previous value.
func (c *Cache) Put(k Key, e Extent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[k]; ok {
		n.extent = e
		c.touch(n)
		return
	}
	c.insert(k, e)
}

// Len returns the number of cached extents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.head, c.tail = nil, nil
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache) insert(k Key, e Extent) {
	for len(c.entries) >= c.capacity && c.tail != nil {
		old := c.tail
		c.unlink(old)
		delete(c.entries, old.key)
		c.evictions.Add(1)
	}
	n := &node{key: k, extent: e}
	c.pushFront(n)
	c.entries[k] = n
}

func (c *Cache) touch(n *node) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

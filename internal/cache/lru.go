package cache

import (
	"container/list"
	"sync"
)

// LRU is a bounded map that evicts the least recently used key once it
// holds more than capacity entries. A capacity below one means unbounded.
type LRU[V any] struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
	onEvict  func(key string, value V)
}

type entry[V any] struct {
	key   string
	value V
}

func NewLRU[V any](capacity int) *LRU[V] {
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// OnEvict registers a callback run, under the cache lock, for every evicted entry.
func (c *LRU[V]) OnEvict(fn func(key string, value V)) *LRU[V] {
	c.onEvict = fn
	return c
}

func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.order.MoveToFront(elem)
		elem.Value.(*entry[V]).value = value
		return
	}
	c.add(key, value)
}

// GetOrAdd returns the value for key, creating it with create when absent.
// Lookup and insertion happen under one lock, so concurrent callers for the
// same key share a single value.
func (c *LRU[V]) GetOrAdd(key string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry[V]).value
	}

	value := create()
	c.add(key, value)
	return value
}

func (c *LRU[V]) add(key string, value V) {
	elem := c.order.PushFront(&entry[V]{key, value})
	c.items[key] = elem

	if c.capacity > 0 && c.order.Len() > c.capacity {
		c.evict()
	}
}

func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

func (c *LRU[V]) evict() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	e := elem.Value.(*entry[V])
	c.order.Remove(elem)
	delete(c.items, e.key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order = list.New()
}

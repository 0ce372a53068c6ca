package cache

import "sync"

type Cache[T any] struct {
	values map[string]T
	mutex  sync.RWMutex
}

func New[T any]() *Cache[T] {
	return &Cache[T]{
		values: map[string]T{},
	}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *Cache[T]) Set(key string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.values[key] = value
}

func (c *Cache[T]) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.values, key)
}

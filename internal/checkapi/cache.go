package checkapi

import (
	"encoding/json"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes answers to questions about one testable.
//
// Values are stored in serialized form. Concurrent computations of the same
// key are collapsed; failed computations are not stored.
type Cache struct {
	mu     sync.RWMutex
	values map[string]any
	group  singleflight.Group
}

func NewCache() *Cache {
	return &Cache{values: make(map[string]any)}
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cache) set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}

// Len returns the number of stored answers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// CachedQuestion answers key from the context's cache, calling compute on a miss.
// Errors from compute are returned as-is and nothing is stored.
func CachedQuestion[T any](
	c *Context,
	key string,
	compute func() (T, error),
	serialize func(T) (any, error),
	deserialize func(any) (T, error),
) (T, error) {
	var zero T
	cache := c.Cache
	if cache == nil {
		return compute()
	}

	if v, ok := cache.get(key); ok {
		return decodeCached(key, v, deserialize)
	}

	v, err, _ := cache.group.Do(key, func() (any, error) {
		if v, ok := cache.get(key); ok {
			return v, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		stored, err := serialize(result)
		if err != nil {
			return nil, NewError(KindCacheSerialization, key, err)
		}
		cache.set(key, stored)
		return stored, nil
	})
	if err != nil {
		return zero, err
	}
	return decodeCached(key, v, deserialize)
}

func decodeCached[T any](key string, v any, deserialize func(any) (T, error)) (T, error) {
	out, err := deserialize(v)
	if err != nil {
		var zero T
		return zero, NewError(KindCacheSerialization, key, err)
	}
	return out, nil
}

// CachedJSON is CachedQuestion with JSON round-tripping.
func CachedJSON[T any](c *Context, key string, compute func() (T, error)) (T, error) {
	return CachedQuestion(c, key, compute, SerializeJSON[T], DeserializeJSON[T])
}

func SerializeJSON[T any](v T) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func DeserializeJSON[T any](v any) (T, error) {
	var out T
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		raw = b
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}

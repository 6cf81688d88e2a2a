package reg

import (
	"sync"
)

type (
	registry map[string]any
)

var (
	instance = registry{}
	mu       sync.RWMutex
)

// Lookup reports whether key holds a value of type T.
func Lookup[T any](key string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	value, ok := instance[key].(T)
	return value, ok
}

func Set(key string, value any) {
	mu.Lock()
	defer mu.Unlock()
	instance[key] = value
}

func Delete(key string) {
	mu.Lock()
	defer mu.Unlock()
	delete(instance, key)
}

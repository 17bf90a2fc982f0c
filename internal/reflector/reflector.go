// Package reflector resolves human-readable names for payload variants,
// caching reflection results so that naming a variant in a log line stays
// cheap on hot paths.
package reflector

import (
	"reflect"
	"sync"
)

var (
	mu    sync.RWMutex
	cache = make(map[reflect.Type]string)
)

// VariantName returns the short type name of x, e.g. "SequencerMsg".
// Pointers are unwrapped; a nil value yields "<nil>".
func VariantName(x any) string {
	t := reflect.TypeOf(x)
	if t == nil {
		return "<nil>"
	}

	mu.RLock()
	name, ok := cache[t]
	mu.RUnlock()
	if ok {
		return name
	}

	e := t
	for e.Kind() == reflect.Pointer {
		e = e.Elem()
	}
	name = e.Name()
	if name == "" {
		name = e.String()
	}

	mu.Lock()
	cache[t] = name
	mu.Unlock()
	return name
}

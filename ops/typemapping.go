package ops

import (
	"reflect"
	"sync"
)

// TypeMapping is the default resolver set for T. Any field may be nil.
type TypeMapping[T any] struct {
	Put    PutResolver[T]
	Get    GetResolver[T]
	Delete DeleteResolver[T]
}

// TypeMappings is a concurrency-safe registry keyed by domain type.
type TypeMappings struct {
	mu     sync.RWMutex
	byType map[reflect.Type]any
}

func NewTypeMappings() *TypeMappings {
	return &TypeMappings{byType: make(map[reflect.Type]any)}
}

// RegisterTypeMapping sets the mapping for T, replacing any previous one.
func RegisterTypeMapping[T any](m *TypeMappings, tm TypeMapping[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byType[reflect.TypeFor[T]()] = &tm
}

func (m *TypeMappings) Lookup(t reflect.Type) (any, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tm, ok := m.byType[t]
	return tm, ok
}

func (m *TypeMappings) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byType)
}

func lookupTypeMapping[T any](s Store) (*TypeMapping[T], bool) {
	v, ok := s.TypeMapping(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	tm, ok := v.(*TypeMapping[T])
	return tm, ok && tm != nil
}

func noTypeMapping[T any](op string) error {
	return configError(op, &NoTypeMappingError{Type: reflect.TypeFor[T]()})
}

// isNil reports whether v is nil or a nil pointer, map, slice, func, chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

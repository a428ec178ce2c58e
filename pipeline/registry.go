package pipeline

import "reflect"

// TypeKey is the stable identifier of a semantic data kind. It is the sole
// addressing mechanism into the Registry: one key per distinct value type
// ever stored.
type TypeKey = reflect.Type

// KeyOf returns the TypeKey of the static type T.
func KeyOf[T any]() TypeKey {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Registry is a type-keyed store holding at most one value per TypeKey. It
// is created once at workflow initialization from caller-supplied seed
// values, extended by task outputs during step execution, and returned to
// the caller as the pipeline result.
//
// A Registry is not safe for concurrent mutation. It is owned exclusively
// by one in-flight step execution at a time; ownership transfers to the
// caller between step calls.
type Registry struct {
	values map[TypeKey]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[TypeKey]any)}
}

// Set stores a value keyed by its own runtime type. Writing a type that
// already has a value silently replaces it (last write wins). A nil value
// is ignored.
func (r *Registry) Set(v any) TypeKey {
	if v == nil {
		return nil
	}
	key := reflect.TypeOf(v)
	r.values[key] = v
	return key
}

// setKey stores a value under an explicit key. Used by the step scheduler
// to register task outputs under their declared output key.
func (r *Registry) setKey(key TypeKey, v any) {
	r.values[key] = v
}

// Value returns the value stored under the given key, if any.
func (r *Registry) Value(key TypeKey) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Contains reports whether a value is stored under the given key.
func (r *Registry) Contains(key TypeKey) bool {
	_, ok := r.values[key]
	return ok
}

// Len returns the number of stored values.
func (r *Registry) Len() int {
	return len(r.values)
}

// Keys returns the keys of all current entries, in no particular order.
func (r *Registry) Keys() []TypeKey {
	keys := make([]TypeKey, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	return keys
}

// Put stores a value keyed by the static type T. Unlike Registry.Set, the
// key is T itself, so values can be stored under an interface type.
func Put[T any](r *Registry, v T) {
	r.values[KeyOf[T]()] = v
}

// Get retrieves the value stored under the static type T.
func Get[T any](r *Registry) (T, bool) {
	v, ok := r.values[KeyOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

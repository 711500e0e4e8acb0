package ir

import (
	"strconv"
)

// TypeHandle indexes a type interned in a TypeRegistry.
type TypeHandle uint32

// TypeRegistry interns structurally identical types so that they can be
// compared and reported by handle.
type TypeRegistry struct {
	types   []*Type
	typeMap map[string]TypeHandle
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]*Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
	}
}

// GetOrCreate returns the handle of a type structurally equal to t,
// registering t if none exists yet.
func (r *TypeRegistry) GetOrCreate(t *Type) TypeHandle {
	key := KeyOf(t)
	if handle, exists := r.typeMap[key]; exists {
		return handle
	}
	handle := TypeHandle(len(r.types))
	r.types = append(r.types, t)
	r.typeMap[key] = handle
	return handle
}

// Lookup finds a type by its handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (*Type, bool) {
	if int(handle) >= len(r.types) {
		return nil, false
	}
	return r.types[handle], true
}

// Types returns all registered types in registration order.
func (r *TypeRegistry) Types() []*Type {
	return r.types
}

// Count returns the number of unique types registered.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}

// KeyOf builds a key that is equal for two types exactly when they are
// structurally equal: same basic type, shape, arrayness and, for structs,
// same type name and member names and types. Qualifiers do not take part.
func KeyOf(t *Type) string {
	return string(appendKey(make([]byte, 0, 32), t))
}

func appendKey(b []byte, t *Type) []byte {
	b = strconv.AppendUint(b, uint64(t.Basic), 10)
	switch {
	case t.IsMatrix():
		b = append(b, ":m"...)
		b = strconv.AppendInt(b, int64(t.MatrixCols), 10)
		b = append(b, 'x')
		b = strconv.AppendInt(b, int64(t.MatrixRows), 10)
	case t.VectorSize > 1:
		b = append(b, ":v"...)
		b = strconv.AppendInt(b, int64(t.VectorSize), 10)
	}
	if t.IsArray() {
		b = append(b, ":a"...)
		for _, d := range t.Arrays.Dims {
			b = append(b, '[')
			b = strconv.AppendInt(b, int64(d), 10)
			b = append(b, ']')
		}
	}
	if t.IsStruct() {
		b = append(b, ":s("...)
		b = append(b, t.TypeName...)
		for _, m := range t.Members {
			b = append(b, ',')
			b = append(b, m.Name...)
			b = append(b, '=')
			b = appendKey(b, m.Type)
		}
		b = append(b, ')')
	}
	return b
}

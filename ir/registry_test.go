package ir

import (
	"testing"
)

func TestTypeRegistry_ScalarDeduplication(t *testing.T) {
	registry := NewTypeRegistry()

	// Same shape, different storage: still one type
	f1 := registry.GetOrCreate(NewScalar(BasicFloat, StorageTemporary))
	f2 := registry.GetOrCreate(NewScalar(BasicFloat, StorageUniform))

	if f1 != f2 {
		t.Errorf("Expected same handle for identical scalar types, got %d and %d", f1, f2)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 type, got %d", registry.Count())
	}
}

func TestTypeRegistry_DifferentShapes(t *testing.T) {
	registry := NewTypeRegistry()

	handles := []TypeHandle{
		registry.GetOrCreate(NewScalar(BasicFloat, StorageTemporary)),
		registry.GetOrCreate(NewScalar(BasicInt, StorageTemporary)),
		registry.GetOrCreate(NewVector(BasicFloat, 2, StorageTemporary)),
		registry.GetOrCreate(NewVector(BasicFloat, 4, StorageTemporary)),
		registry.GetOrCreate(NewMatrix(BasicFloat, 2, 2, StorageTemporary)),
		registry.GetOrCreate(NewMatrix(BasicFloat, 2, 3, StorageTemporary)),
		registry.GetOrCreate(NewScalar(BasicFloat, StorageTemporary).ArrayOf(4)),
		registry.GetOrCreate(NewScalar(BasicFloat, StorageTemporary).ArrayOf(0)),
	}

	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			if handles[i] == handles[j] {
				t.Errorf("Expected different handles for types %d and %d, got %d", i, j, handles[i])
			}
		}
	}
	if registry.Count() != len(handles) {
		t.Errorf("Expected %d types, got %d", len(handles), registry.Count())
	}
}

func TestTypeRegistry_StructMembers(t *testing.T) {
	registry := NewTypeRegistry()

	mk := func(name, field string, basic BasicType) *Type {
		return NewStruct(name, []Member{
			{Name: field, Type: NewVector(basic, 3, StorageTemporary)},
		}, StorageTemporary)
	}

	a := registry.GetOrCreate(mk("S", "pos", BasicFloat))
	b := registry.GetOrCreate(mk("S", "pos", BasicFloat))
	c := registry.GetOrCreate(mk("S", "dir", BasicFloat))
	d := registry.GetOrCreate(mk("S", "pos", BasicInt))
	e := registry.GetOrCreate(mk("T", "pos", BasicFloat))

	if a != b {
		t.Errorf("Expected identical structs to share a handle")
	}
	if a == c || a == d || a == e {
		t.Errorf("Expected structs differing in member name, member type or type name to differ")
	}
}

func TestTypeRegistry_Lookup(t *testing.T) {
	registry := NewTypeRegistry()
	vec := NewVector(BasicFloat, 3, StorageTemporary)
	h := registry.GetOrCreate(vec)

	got, ok := registry.Lookup(h)
	if !ok || got != vec {
		t.Fatalf("Lookup(%d) = %v, %v", h, got, ok)
	}
	if _, ok := registry.Lookup(h + 1); ok {
		t.Errorf("Expected lookup of unknown handle to fail")
	}
	if len(registry.Types()) != 1 {
		t.Errorf("Expected 1 registered type, got %d", len(registry.Types()))
	}
}

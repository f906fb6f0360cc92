package ecs

import (
	"reflect"
	"unsafe"
)

// resourceEntry holds one global resource: a value that exists once per
// Storage and is not attached to any entity. Each resource type is its own
// access partition, distinct from the component partition of the same type.
type resourceEntry struct {
	typ     reflect.Type
	dataPtr unsafe.Pointer

	// box keeps the allocation reachable; dataPtr points into it.
	box reflect.Value
}

// AddSingleton stores value as the global resource for its type, replacing any
// previous value. The value may be passed by value or by pointer.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	typ := v.Type()

	if entry, ok := s.resources[typ]; ok {
		entry.box.Elem().Set(v)
		return
	}

	box := reflect.New(typ)
	box.Elem().Set(v)
	s.resources[typ] = &resourceEntry{
		typ:     typ,
		dataPtr: unsafe.Pointer(box.Pointer()),
		box:     box,
	}
}

// RemoveSingleton deletes the global resource of the given type, if present.
func (s *Storage) RemoveSingleton(typ reflect.Type) {
	delete(s.resources, typ)
}

// ReadSingleton fills target, which must be a pointer to a pointer of the
// resource type (e.g. **GameConfig), with the stored resource. Returns false
// when no resource of that type exists.
func (s *Storage) ReadSingleton(target any) bool {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		return false
	}
	entry, ok := s.resources[v.Elem().Type().Elem()]
	if !ok {
		return false
	}
	v.Elem().Set(entry.box)
	return true
}

func (s *Storage) getSingletonEntry(typ reflect.Type) *resourceEntry {
	return s.resources[typ]
}

func (s *Storage) hasResource(typ reflect.Type) bool {
	_, ok := s.resources[typ]
	return ok
}

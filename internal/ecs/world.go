// Package ecs provides the entity/component store the simulation runs on.
// Entities are plain IDs; components are pointers to structs keyed by their type.
package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// EntityID identifies an entity. Zero is never issued.
type EntityID uint64

var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrResourceNotFound = errors.New("resource not found")
)

type entity struct {
	id         EntityID
	name       string
	components map[reflect.Type]any
}

// World owns entity existence, component storage and global resources.
// Entities are never physically removed; callers archive them with components.
type World struct {
	nextID    EntityID
	entities  map[EntityID]*entity
	order     []EntityID
	resources map[reflect.Type]any
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		nextID:    1,
		entities:  make(map[EntityID]*entity),
		resources: make(map[reflect.Type]any),
	}
}

// Spawn creates an entity with the given components and returns its ID.
// Components must be pointers; non-pointer values panic.
func (w *World) Spawn(name string, components ...any) EntityID {
	id := w.nextID
	w.nextID++

	e := &entity{id: id, name: name, components: make(map[reflect.Type]any, len(components))}
	w.entities[id] = e
	w.order = append(w.order, id)

	for _, c := range components {
		e.components[componentType(c)] = c
	}
	return id
}

// Exists reports whether id was issued by this world.
func (w *World) Exists(id EntityID) bool {
	_, ok := w.entities[id]
	return ok
}

// Name returns the entity's display name.
func (w *World) Name(id EntityID) (string, error) {
	e, ok := w.entities[id]
	if !ok {
		return "", fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return e.name, nil
}

// SetName renames an entity.
func (w *World) SetName(id EntityID, name string) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	e.name = name
	return nil
}

// Len returns the number of entities ever spawned.
func (w *World) Len() int {
	return len(w.order)
}

// Entities returns every entity ID in ascending order.
func (w *World) Entities() []EntityID {
	out := make([]EntityID, len(w.order))
	copy(out, w.order)
	return out
}

// AddComponent attaches c to the entity, replacing any component of the same type.
func (w *World) AddComponent(id EntityID, c any) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("add %T to %d: %w", c, id, ErrEntityNotFound)
	}
	e.components[componentType(c)] = c
	return nil
}

// RemoveComponent detaches the component of type t. Returns false if absent.
func (w *World) RemoveComponent(id EntityID, t reflect.Type) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	if _, has := e.components[t]; !has {
		return false
	}
	delete(e.components, t)
	return true
}

// Component returns the component of type t, or nil.
func (w *World) Component(id EntityID, t reflect.Type) any {
	e, ok := w.entities[id]
	if !ok {
		return nil
	}
	return e.components[t]
}

// HasAll reports whether the entity carries every listed component type.
func (w *World) HasAll(id EntityID, types ...reflect.Type) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	for _, t := range types {
		if _, has := e.components[t]; !has {
			return false
		}
	}
	return true
}

// With returns the IDs of entities holding all of the given component types,
// in ascending ID order. With no types it returns every entity.
func (w *World) With(types ...reflect.Type) []EntityID {
	var out []EntityID
	for _, id := range w.order {
		if w.HasAll(id, types...) {
			out = append(out, id)
		}
	}
	return out
}

// Without filters ids down to those lacking every listed type.
func (w *World) Without(ids []EntityID, types ...reflect.Type) []EntityID {
	out := ids[:0:0]
	for _, id := range ids {
		e := w.entities[id]
		if e == nil {
			continue
		}
		keep := true
		for _, t := range types {
			if _, has := e.components[t]; has {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, id)
		}
	}
	return out
}

// ComponentTypes lists the entity's component types sorted by name.
func (w *World) ComponentTypes(id EntityID) []reflect.Type {
	e, ok := w.entities[id]
	if !ok {
		return nil
	}
	out := make([]reflect.Type, 0, len(e.components))
	for t := range e.components {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func componentType(c any) reflect.Type {
	t := reflect.TypeOf(c)
	if t == nil || t.Kind() != reflect.Pointer {
		panic(fmt.Sprintf("ecs: component %T must be a pointer", c))
	}
	return t
}

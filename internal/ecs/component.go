package ecs

import (
	"fmt"
	"reflect"
)

// TypeOf returns the component key for *T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil))
}

// Add attaches c to the entity.
func Add[T any](w *World, id EntityID, c *T) error {
	return w.AddComponent(id, c)
}

// Get returns the entity's *T component, or nil when absent.
func Get[T any](w *World, id EntityID) *T {
	c := w.Component(id, TypeOf[T]())
	if c == nil {
		return nil
	}
	return c.(*T)
}

// Has reports whether the entity carries a *T component.
func Has[T any](w *World, id EntityID) bool {
	return w.HasAll(id, TypeOf[T]())
}

// Remove detaches the *T component. Returns false if it was absent.
func Remove[T any](w *World, id EntityID) bool {
	return w.RemoveComponent(id, TypeOf[T]())
}

// Each returns every entity with a *T component in ascending ID order.
func Each[T any](w *World) []EntityID {
	return w.With(TypeOf[T]())
}

// SetResource stores v as the world's resource of type T, replacing any previous one.
func SetResource[T any](w *World, v T) {
	w.resources[reflect.TypeOf((*T)(nil)).Elem()] = v
}

// Resource returns the world's resource of type T.
func Resource[T any](w *World) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := w.resources[t]
	if !ok {
		return zero, fmt.Errorf("%s: %w", t, ErrResourceNotFound)
	}
	return v.(T), nil
}

// MustResource is Resource for resources installed at setup; it panics when missing.
func MustResource[T any](w *World) T {
	v, err := Resource[T](w)
	if err != nil {
		panic(err)
	}
	return v
}

// HasResource reports whether a resource of type T is installed.
func HasResource[T any](w *World) bool {
	_, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

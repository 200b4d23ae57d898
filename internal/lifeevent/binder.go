package lifeevent

import (
	"reflect"

	"github.com/talgya/hamlet/internal/ecs"
)

// Binder fills one event role. Validate checks a specific candidate;
// Enumerate lists every eligible entity in ascending ID order.
type Binder interface {
	Validate(w *ecs.World, candidate ecs.EntityID) bool
	Enumerate(w *ecs.World) []ecs.EntityID
}

// BinderFunc builds a Binder from two functions.
type BinderFunc struct {
	ValidateFn  func(w *ecs.World, candidate ecs.EntityID) bool
	EnumerateFn func(w *ecs.World) []ecs.EntityID
}

func (b BinderFunc) Validate(w *ecs.World, c ecs.EntityID) bool { return b.ValidateFn(w, c) }

func (b BinderFunc) Enumerate(w *ecs.World) []ecs.EntityID { return b.EnumerateFn(w) }

// Eligible binds entities that carry every component in types and pass pred.
// A nil pred accepts all of them.
func Eligible(types []reflect.Type, pred func(w *ecs.World, id ecs.EntityID) bool) Binder {
	return eligible{types: types, pred: pred}
}

type eligible struct {
	types []reflect.Type
	pred  func(w *ecs.World, id ecs.EntityID) bool
}

func (b eligible) Validate(w *ecs.World, c ecs.EntityID) bool {
	return w.HasAll(c, b.types...) && (b.pred == nil || b.pred(w, c))
}

func (b eligible) Enumerate(w *ecs.World) []ecs.EntityID {
	var out []ecs.EntityID
	for _, id := range w.With(b.types...) {
		if b.pred == nil || b.pred(w, id) {
			out = append(out, id)
		}
	}
	return out
}

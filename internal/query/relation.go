package query

import (
	"reflect"
	"slices"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/social"
)

// Relation is a set of entity tuples a clause can join against or test.
type Relation interface {
	Arity() int
	// Tuples enumerates every satisfying tuple.
	Tuples(w *ecs.World) [][]ecs.EntityID
	// Holds tests a single fully bound tuple.
	Holds(w *ecs.World, ids ...ecs.EntityID) bool
}

type componentRelation struct {
	types []reflect.Type
}

// Components is the unary relation of entities holding every listed component.
func Components(types ...reflect.Type) Relation {
	return componentRelation{types: types}
}

func (r componentRelation) Arity() int { return 1 }

func (r componentRelation) Tuples(w *ecs.World) [][]ecs.EntityID {
	ids := w.With(r.types...)
	out := make([][]ecs.EntityID, len(ids))
	for i, id := range ids {
		out[i] = []ecs.EntityID{id}
	}
	return out
}

func (r componentRelation) Holds(w *ecs.World, ids ...ecs.EntityID) bool {
	return w.HasAll(ids[0], r.types...)
}

// EdgeTest decides whether a relationship edge belongs to a relation.
type EdgeTest func(r *social.Relationship) bool

type edgeRelation struct {
	test EdgeTest
}

// Edges is the binary relation (owner, target) of active relationships passing test.
func Edges(test EdgeTest) Relation {
	return edgeRelation{test: test}
}

func (r edgeRelation) Arity() int { return 2 }

func (r edgeRelation) Tuples(w *ecs.World) [][]ecs.EntityID {
	g, err := ecs.Resource[*social.Graph](w)
	if err != nil {
		return nil
	}
	var out [][]ecs.EntityID
	for _, rel := range g.Edges() {
		if rel.Active && r.test(rel) {
			out = append(out, []ecs.EntityID{rel.Owner, rel.Target})
		}
	}
	return out
}

func (r edgeRelation) Holds(w *ecs.World, ids ...ecs.EntityID) bool {
	g, err := ecs.Resource[*social.Graph](w)
	if err != nil {
		return false
	}
	rel, err := g.Get(ids[0], ids[1])
	return err == nil && rel.Active && r.test(rel)
}

// RelationshipHasTags matches edges carrying every tag.
func RelationshipHasTags(tags ...string) Relation {
	return Edges(func(r *social.Relationship) bool { return r.HasTags(tags...) })
}

// Comparison is an ordering test against a threshold.
type Comparison uint8

const (
	Greater Comparison = iota
	GreaterEqual
	Less
	LessEqual
)

func (c Comparison) test(v, threshold float64) bool {
	switch c {
	case Greater:
		return v > threshold
	case GreaterEqual:
		return v >= threshold
	case Less:
		return v < threshold
	case LessEqual:
		return v <= threshold
	}
	return false
}

// RelationshipStat matches edges whose stat compares to threshold.
func RelationshipStat(stat string, cmp Comparison, threshold float64) Relation {
	return Edges(func(r *social.Relationship) bool {
		return r.Stats().Has(stat) && cmp.test(r.Stat(stat), threshold)
	})
}

type tupleRelation struct {
	arity int
	fn    func(w *ecs.World) [][]ecs.EntityID
}

// TupleFunc builds a relation from an enumerator. Holds scans the enumeration.
func TupleFunc(arity int, fn func(w *ecs.World) [][]ecs.EntityID) Relation {
	return tupleRelation{arity: arity, fn: fn}
}

func (r tupleRelation) Arity() int { return r.arity }

func (r tupleRelation) Tuples(w *ecs.World) [][]ecs.EntityID { return r.fn(w) }

func (r tupleRelation) Holds(w *ecs.World, ids ...ecs.EntityID) bool {
	for _, t := range r.fn(w) {
		if slices.Equal(t, ids) {
			return true
		}
	}
	return false
}

package query

import (
	"reflect"

	"github.com/talgya/hamlet/internal/ecs"
)

// Kind tags a clause variant.
type Kind uint8

const (
	KindHasComponents Kind = iota
	KindWhere
	KindWhereNot
	KindWhereAny
	KindFilter
	KindNotEqual
)

func (k Kind) String() string {
	switch k {
	case KindHasComponents:
		return "has_components"
	case KindWhere:
		return "where"
	case KindWhereNot:
		return "where_not"
	case KindWhereAny:
		return "where_any"
	case KindFilter:
		return "filter"
	case KindNotEqual:
		return "ne"
	}
	return "unknown"
}

// FilterFunc tests bound entities, in clause variable order.
type FilterFunc func(w *ecs.World, ids ...ecs.EntityID) bool

// Clause is one step of a query. Build clauses with the constructors below.
type Clause struct {
	Kind Kind
	Vars []string

	Types []reflect.Type // HasComponents
	Rel   Relation       // Where, WhereNot
	Test  FilterFunc     // Filter
	Any   []Clause       // WhereAny
}

// HasComponents binds or filters v to entities holding every listed component.
func HasComponents(v string, types ...reflect.Type) Clause {
	return Clause{Kind: KindHasComponents, Vars: []string{v}, Types: types}
}

// Where joins the bindings against rel over vars.
func Where(rel Relation, vars ...string) Clause {
	return Clause{Kind: KindWhere, Vars: vars, Rel: rel}
}

// WhereNot drops bindings that match rel on their bound vars. Unbound vars
// act as wildcards and stay unbound.
func WhereNot(rel Relation, vars ...string) Clause {
	return Clause{Kind: KindWhereNot, Vars: vars, Rel: rel}
}

// WhereAny keeps the union of bindings produced by each clause.
func WhereAny(clauses ...Clause) Clause {
	return Clause{Kind: KindWhereAny, Any: clauses}
}

// Filter keeps bindings for which fn holds. Every var must already be bound.
func Filter(fn FilterFunc, vars ...string) Clause {
	return Clause{Kind: KindFilter, Vars: vars, Test: fn}
}

// NotEqual drops bindings in which any two of vars share an entity.
func NotEqual(vars ...string) Clause {
	return Clause{Kind: KindNotEqual, Vars: vars}
}

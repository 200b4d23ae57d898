// Package query evaluates declarative patterns over the world: a list of
// role variables to find and a list of clauses that bind and filter them.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/hamlet/internal/ecs"
)

var (
	ErrInvalidVariable = errors.New("invalid query variable")
	ErrUnboundVariable = errors.New("unbound query variable")
	ErrInvalidClause   = errors.New("invalid query clause")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidVariable reports whether name can be used as a role variable.
func ValidVariable(name string) bool {
	return identifier.MatchString(name)
}

// Query is a validated pattern. It is immutable and safe to reuse.
type Query struct {
	find    []string
	clauses []Clause
}

// New validates and builds a query. Variables must be identifiers, filters
// may only reference variables bound by earlier clauses, and every find
// variable must end up bound.
func New(find []string, clauses ...Clause) (*Query, error) {
	seen := make(map[string]bool, len(find))
	for _, v := range find {
		if !ValidVariable(v) {
			return nil, fmt.Errorf("find %q: %w", v, ErrInvalidVariable)
		}
		if seen[v] {
			return nil, fmt.Errorf("find %q listed twice: %w", v, ErrInvalidVariable)
		}
		seen[v] = true
	}

	bound := map[string]bool{}
	for i, c := range clauses {
		var err error
		bound, err = check(c, bound)
		if err != nil {
			return nil, fmt.Errorf("clause %d (%s): %w", i, c.Kind, err)
		}
	}
	for _, v := range find {
		if !bound[v] {
			return nil, fmt.Errorf("find %q is never bound: %w", v, ErrUnboundVariable)
		}
	}

	return &Query{find: slices.Clone(find), clauses: slices.Clone(clauses)}, nil
}

// Must is New for package-level queries; it panics on error.
func Must(find []string, clauses ...Clause) *Query {
	q, err := New(find, clauses...)
	if err != nil {
		panic(err)
	}
	return q
}

// Find returns the query's result variables.
func (q *Query) Find() []string { return slices.Clone(q.find) }

// check validates c given the variables bound so far and returns the bound
// set after c.
func check(c Clause, bound map[string]bool) (map[string]bool, error) {
	for _, v := range c.Vars {
		if !ValidVariable(v) {
			return nil, fmt.Errorf("%q: %w", v, ErrInvalidVariable)
		}
	}

	next := make(map[string]bool, len(bound)+len(c.Vars))
	for v := range bound {
		next[v] = true
	}

	switch c.Kind {
	case KindHasComponents:
		if len(c.Vars) != 1 || len(c.Types) == 0 {
			return nil, fmt.Errorf("needs one variable and at least one component: %w", ErrInvalidClause)
		}
		next[c.Vars[0]] = true

	case KindWhere:
		if err := checkArity(c); err != nil {
			return nil, err
		}
		for _, v := range c.Vars {
			next[v] = true
		}

	case KindWhereNot:
		if err := checkArity(c); err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(c.Vars, func(v string) bool { return bound[v] }) {
			return nil, fmt.Errorf("where_not needs a bound variable: %w", ErrUnboundVariable)
		}

	case KindWhereAny:
		if len(c.Any) == 0 {
			return nil, fmt.Errorf("where_any without clauses: %w", ErrInvalidClause)
		}
		var common map[string]bool
		for _, sub := range c.Any {
			b, err := check(sub, bound)
			if err != nil {
				return nil, err
			}
			if common == nil {
				common = b
				continue
			}
			for v := range common {
				if !b[v] {
					delete(common, v)
				}
			}
		}
		return common, nil

	case KindFilter:
		if c.Test == nil || len(c.Vars) == 0 {
			return nil, fmt.Errorf("filter needs a function and variables: %w", ErrInvalidClause)
		}
		if err := requireBound(c.Vars, bound); err != nil {
			return nil, err
		}

	case KindNotEqual:
		if len(c.Vars) < 2 {
			return nil, fmt.Errorf("ne needs two or more variables: %w", ErrInvalidClause)
		}
		if err := requireBound(c.Vars, bound); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("kind %d: %w", c.Kind, ErrInvalidClause)
	}
	return next, nil
}

func checkArity(c Clause) error {
	if c.Rel == nil {
		return fmt.Errorf("missing relation: %w", ErrInvalidClause)
	}
	if c.Rel.Arity() != len(c.Vars) {
		return fmt.Errorf("relation arity %d, got %d variables: %w", c.Rel.Arity(), len(c.Vars), ErrInvalidClause)
	}
	return nil
}

func requireBound(vars []string, bound map[string]bool) error {
	for _, v := range vars {
		if !bound[v] {
			return fmt.Errorf("%q: %w", v, ErrUnboundVariable)
		}
	}
	return nil
}

// Evaluate returns every distinct tuple of entities, in find order, that
// satisfies the query. Results are sorted by entity ID.
func (q *Query) Evaluate(w *ecs.World) [][]ecs.EntityID {
	return q.EvaluateWith(w, nil)
}

// EvaluateWith is Evaluate with some variables bound up front.
func (q *Query) EvaluateWith(w *ecs.World, initial map[string]ecs.EntityID) [][]ecs.EntityID {
	if len(q.find) == 0 {
		return nil
	}

	start := make(binding, len(initial))
	for k, v := range initial {
		start[k] = v
	}
	rows := []binding{start}
	for _, c := range q.clauses {
		rows = apply(w, c, rows)
		if len(rows) == 0 {
			return nil
		}
	}

	seen := make(map[string]bool, len(rows))
	var out [][]ecs.EntityID
	for _, row := range rows {
		tuple, ok := row.values(q.find)
		if !ok {
			continue
		}
		k := tupleKey(tuple)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, tuple)
	}
	sort.Slice(out, func(i, j int) bool { return slices.Compare(out[i], out[j]) < 0 })
	return out
}

type binding map[string]ecs.EntityID

func (b binding) with(vars []string, tuple []ecs.EntityID) (binding, bool) {
	out := make(binding, len(b)+len(vars))
	for k, v := range b {
		out[k] = v
	}
	for i, v := range vars {
		if cur, ok := out[v]; ok {
			if cur != tuple[i] {
				return nil, false
			}
			continue
		}
		out[v] = tuple[i]
	}
	return out, true
}

// matches reports whether tuple agrees with b wherever b has a value.
func (b binding) matches(vars []string, tuple []ecs.EntityID) bool {
	for i, v := range vars {
		if cur, ok := b[v]; ok && cur != tuple[i] {
			return false
		}
	}
	return true
}

func (b binding) values(vars []string) ([]ecs.EntityID, bool) {
	out := make([]ecs.EntityID, len(vars))
	for i, v := range vars {
		id, ok := b[v]
		if !ok {
			return nil, false
		}
		out[i] = id
	}
	return out, true
}

func (b binding) key() string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(uint64(b[n]), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}

func tupleKey(t []ecs.EntityID) string {
	var sb strings.Builder
	for _, id := range t {
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteByte(',')
	}
	return sb.String()
}

func apply(w *ecs.World, c Clause, rows []binding) []binding {
	switch c.Kind {
	case KindHasComponents:
		return join(w, Components(c.Types...), c.Vars, rows)
	case KindWhere:
		return join(w, c.Rel, c.Vars, rows)
	case KindWhereNot:
		return exclude(w, c.Rel, c.Vars, rows)
	case KindWhereAny:
		return union(w, c.Any, rows)
	case KindFilter:
		return keep(rows, func(b binding) bool {
			ids, ok := b.values(c.Vars)
			return ok && c.Test(w, ids...)
		})
	case KindNotEqual:
		return keep(rows, func(b binding) bool {
			ids, ok := b.values(c.Vars)
			if !ok {
				return false
			}
			for i := range ids {
				for j := i + 1; j < len(ids); j++ {
					if ids[i] == ids[j] {
						return false
					}
				}
			}
			return true
		})
	}
	return nil
}

func join(w *ecs.World, rel Relation, vars []string, rows []binding) []binding {
	var (
		out    []binding
		tuples [][]ecs.EntityID
		loaded bool
	)
	for _, row := range rows {
		if ids, ok := row.values(vars); ok {
			if consistent(vars, ids) && rel.Holds(w, ids...) {
				out = append(out, row)
			}
			continue
		}
		if !loaded {
			tuples = rel.Tuples(w)
			loaded = true
		}
		for _, t := range tuples {
			if !row.matches(vars, t) {
				continue
			}
			if next, ok := row.with(vars, t); ok {
				out = append(out, next)
			}
		}
	}
	return out
}

// consistent rejects tuples that give a repeated variable two different values.
func consistent(vars []string, ids []ecs.EntityID) bool {
	for i := range vars {
		for j := i + 1; j < len(vars); j++ {
			if vars[i] == vars[j] && ids[i] != ids[j] {
				return false
			}
		}
	}
	return true
}

func exclude(w *ecs.World, rel Relation, vars []string, rows []binding) []binding {
	var (
		tuples [][]ecs.EntityID
		loaded bool
	)
	return keep(rows, func(b binding) bool {
		if ids, ok := b.values(vars); ok {
			return !rel.Holds(w, ids...)
		}
		if !loaded {
			tuples = rel.Tuples(w)
			loaded = true
		}
		for _, t := range tuples {
			if b.matches(vars, t) {
				return false
			}
		}
		return true
	})
}

func union(w *ecs.World, clauses []Clause, rows []binding) []binding {
	seen := map[string]bool{}
	var out []binding
	for _, c := range clauses {
		for _, b := range apply(w, c, rows) {
			k := b.key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, b)
		}
	}
	return out
}

func keep(rows []binding, fn func(binding) bool) []binding {
	var out []binding
	for _, b := range rows {
		if fn(b) {
			out = append(out, b)
		}
	}
	return out
}

// Package defs holds immutable content definitions looked up by ID.
package defs

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownDefinition   = errors.New("unknown definition")
	ErrDuplicateDefinition = errors.New("duplicate definition")
)

// Definition is anything addressable by a stable string ID.
type Definition interface {
	DefinitionID() string
}

// Library maps definition IDs to compiled definitions.
type Library[T Definition] struct {
	kind string
	defs map[string]T
}

// NewLibrary creates an empty library. kind labels errors ("trait", "job role").
func NewLibrary[T Definition](kind string) *Library[T] {
	return &Library[T]{kind: kind, defs: make(map[string]T)}
}

// Add registers a definition. IDs must be unique.
func (l *Library[T]) Add(d T) error {
	id := d.DefinitionID()
	if id == "" {
		return fmt.Errorf("%s with empty id: %w", l.kind, ErrUnknownDefinition)
	}
	if _, ok := l.defs[id]; ok {
		return fmt.Errorf("%s %q: %w", l.kind, id, ErrDuplicateDefinition)
	}
	l.defs[id] = d
	return nil
}

// Get returns the definition registered under id.
func (l *Library[T]) Get(id string) (T, error) {
	d, ok := l.defs[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", l.kind, id, ErrUnknownDefinition)
	}
	return d, nil
}

// IDs returns every registered ID in sorted order.
func (l *Library[T]) IDs() []string {
	out := make([]string, 0, len(l.defs))
	for id := range l.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *Library[T]) Len() int { return len(l.defs) }

package social

import (
	"errors"
	"fmt"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/stats"
)

var ErrNoRelationship = errors.New("relationship not found")

type edgeKey struct{ owner, target ecs.EntityID }

// Graph stores at most one Relationship per ordered (owner, target) pair.
// Edges are created lazily and iterate in creation order.
type Graph struct {
	edges    map[edgeKey]*Relationship
	order    []*Relationship
	outgoing map[ecs.EntityID][]*Relationship
	incoming map[ecs.EntityID][]*Relationship
	newStats func() *stats.Set
}

// NewGraph creates an empty graph. newStats builds each new edge's stats;
// nil uses DefaultStats.
func NewGraph(newStats func() *stats.Set) *Graph {
	if newStats == nil {
		newStats = DefaultStats
	}
	return &Graph{
		edges:    make(map[edgeKey]*Relationship),
		outgoing: make(map[ecs.EntityID][]*Relationship),
		incoming: make(map[ecs.EntityID][]*Relationship),
		newStats: newStats,
	}
}

// GetOrCreate returns the owner -> target edge, creating it on first use.
func (g *Graph) GetOrCreate(owner, target ecs.EntityID) *Relationship {
	k := edgeKey{owner, target}
	if r, ok := g.edges[k]; ok {
		return r
	}
	r := newRelationship(owner, target, g.newStats())
	g.edges[k] = r
	g.order = append(g.order, r)
	g.outgoing[owner] = append(g.outgoing[owner], r)
	g.incoming[target] = append(g.incoming[target], r)
	return r
}

// Get returns the existing owner -> target edge.
func (g *Graph) Get(owner, target ecs.EntityID) (*Relationship, error) {
	r, ok := g.edges[edgeKey{owner, target}]
	if !ok {
		return nil, fmt.Errorf("%d -> %d: %w", owner, target, ErrNoRelationship)
	}
	return r, nil
}

func (g *Graph) Has(owner, target ecs.EntityID) bool {
	_, ok := g.edges[edgeKey{owner, target}]
	return ok
}

// AddTags tags the owner -> target edge, creating it if needed.
func (g *Graph) AddTags(owner, target ecs.EntityID, tags ...string) {
	g.GetOrCreate(owner, target).AddTags(tags...)
}

// RemoveTags untags the owner -> target edge. Missing edges are left alone.
func (g *Graph) RemoveTags(owner, target ecs.EntityID, tags ...string) {
	if r, ok := g.edges[edgeKey{owner, target}]; ok {
		r.RemoveTags(tags...)
	}
}

// HasTags reports whether the owner -> target edge exists and carries every tag.
func (g *Graph) HasTags(owner, target ecs.EntityID, tags ...string) bool {
	r, ok := g.edges[edgeKey{owner, target}]
	return ok && r.HasTags(tags...)
}

// WithTags returns the targets of owner's outgoing edges carrying every tag,
// in edge creation order.
func (g *Graph) WithTags(owner ecs.EntityID, tags ...string) []ecs.EntityID {
	var out []ecs.EntityID
	for _, r := range g.outgoing[owner] {
		if r.HasTags(tags...) {
			out = append(out, r.Target)
		}
	}
	return out
}

// Outgoing returns owner's edges in creation order.
func (g *Graph) Outgoing(owner ecs.EntityID) []*Relationship {
	return append([]*Relationship(nil), g.outgoing[owner]...)
}

// Incoming returns the edges pointing at target in creation order.
func (g *Graph) Incoming(target ecs.EntityID) []*Relationship {
	return append([]*Relationship(nil), g.incoming[target]...)
}

// Edges returns every edge in creation order.
func (g *Graph) Edges() []*Relationship {
	return append([]*Relationship(nil), g.order...)
}

func (g *Graph) Len() int { return len(g.order) }

// Deactivate marks every edge touching entity as inactive. Edges are kept
// so history stays queryable.
func (g *Graph) Deactivate(entity ecs.EntityID) {
	for _, r := range g.outgoing[entity] {
		r.Active = false
	}
	for _, r := range g.incoming[entity] {
		r.Active = false
	}
}

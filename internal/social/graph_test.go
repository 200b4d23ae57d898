package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/traits"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	g := NewGraph(nil)
	a := g.GetOrCreate(1, 2)
	b := g.GetOrCreate(1, 2)
	assert.Same(t, a, b)
	assert.Equal(t, 1, g.Len())

	reverse := g.GetOrCreate(2, 1)
	assert.NotSame(t, a, reverse)
	assert.Equal(t, 2, g.Len())
}

func TestGetMissingEdge(t *testing.T) {
	g := NewGraph(nil)
	g.GetOrCreate(1, 2)

	_, err := g.Get(2, 1)
	assert.ErrorIs(t, err, ErrNoRelationship)

	r, err := g.Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityID(2), r.Target)
}

func TestTags(t *testing.T) {
	g := NewGraph(nil)
	g.AddTags(1, 3, TagFriend)
	g.AddTags(1, 2, TagFriend, TagSibling)
	g.AddTags(1, 4, TagEnemy)

	assert.Equal(t, []ecs.EntityID{3, 2}, g.WithTags(1, TagFriend))
	assert.Equal(t, []ecs.EntityID{2}, g.WithTags(1, TagFriend, TagSibling))
	assert.True(t, g.HasTags(1, 2, TagSibling))
	assert.False(t, g.HasTags(2, 1, TagSibling))

	g.RemoveTags(1, 2, TagFriend)
	assert.Equal(t, []ecs.EntityID{3}, g.WithTags(1, TagFriend))

	g.RemoveTags(9, 9, TagFriend)
	assert.False(t, g.Has(9, 9))

	r, _ := g.Get(1, 2)
	assert.Equal(t, []string{TagSibling}, r.Tags())
	assert.True(t, r.HasAnyTag(TagEnemy, TagSibling))
}

func TestDeactivate(t *testing.T) {
	g := NewGraph(nil)
	g.GetOrCreate(1, 2)
	g.GetOrCreate(2, 1)
	g.GetOrCreate(2, 3)

	g.Deactivate(1)
	for _, r := range g.Edges() {
		touches := r.Owner == 1 || r.Target == 1
		assert.Equal(t, !touches, r.Active)
	}
}

func TestRelationshipHoldsTraits(t *testing.T) {
	boss := &traits.Definition{
		ID:      "boss",
		OnApply: []traits.Effect{traits.StatModifier{Stat: Reputation, Value: 10}, traits.SocialRule{Rule: "defers"}},
	}
	g := NewGraph(nil)
	r := g.GetOrCreate(1, 2)
	require.NoError(t, traits.Add(r, boss, traits.Options{}))
	assert.Equal(t, 10.0, r.Stat(Reputation))
	assert.True(t, r.HasRule("defers"))

	traits.Remove(r, "boss")
	assert.Equal(t, 0.0, r.Stat(Reputation))
	assert.False(t, r.HasRule("defers"))
}

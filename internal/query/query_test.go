package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/query"
	"github.com/talgya/hamlet/internal/social"
)

type person struct{}
type shop struct{}
type retired struct{}

type fixture struct {
	w       *ecs.World
	g       *social.Graph
	a, b, c ecs.EntityID
}

func newFixture() fixture {
	w := ecs.NewWorld()
	g := social.NewGraph(nil)
	ecs.SetResource(w, g)
	f := fixture{w: w, g: g}
	f.a = w.Spawn("A", &person{})
	f.b = w.Spawn("B", &person{})
	f.c = w.Spawn("C", &person{}, &retired{})
	w.Spawn("Shop", &shop{})
	return f
}

func (f fixture) romance(owner, target ecs.EntityID, v float64) {
	st, _ := f.g.GetOrCreate(owner, target).Stats().Get(social.Romance)
	st.SetBase(v)
}

func TestOnlyMatchingTupleIsReturned(t *testing.T) {
	f := newFixture()
	f.romance(f.a, f.b, 0.9)
	f.romance(f.b, f.a, 0.2)
	f.romance(f.a, f.c, 0.1)
	f.romance(f.a, f.a, 0.95)

	q := query.Must([]string{"Initiator", "Other"},
		query.HasComponents("Initiator", ecs.TypeOf[person]()),
		query.HasComponents("Other", ecs.TypeOf[person]()),
		query.Where(query.RelationshipStat(social.Romance, query.Greater, 0.7), "Initiator", "Other"),
		query.NotEqual("Initiator", "Other"),
	)

	got := q.Evaluate(f.w)
	assert.Equal(t, [][]ecs.EntityID{{f.a, f.b}}, got)
}

func TestSelfPairWithoutNotEqual(t *testing.T) {
	f := newFixture()
	f.romance(f.a, f.a, 0.95)

	q := query.Must([]string{"X", "Y"},
		query.Where(query.RelationshipStat(social.Romance, query.Greater, 0.7), "X", "Y"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.a, f.a}}, q.Evaluate(f.w))
}

func TestSymmetricClausesReturnBothOrders(t *testing.T) {
	f := newFixture()
	f.romance(f.a, f.b, 0.9)
	f.romance(f.b, f.a, 0.9)

	high := query.RelationshipStat(social.Romance, query.Greater, 0.7)
	q := query.Must([]string{"X", "Y"},
		query.Where(high, "X", "Y"),
		query.Where(high, "Y", "X"),
		query.NotEqual("X", "Y"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.a, f.b}, {f.b, f.a}}, q.Evaluate(f.w))
}

func TestWhereNotTreatsUnboundAsWildcard(t *testing.T) {
	f := newFixture()
	f.g.AddTags(f.a, f.c, social.TagSignificantOther)

	q := query.Must([]string{"X"},
		query.HasComponents("X", ecs.TypeOf[person]()),
		query.WhereNot(query.RelationshipHasTags(social.TagSignificantOther), "X", "Partner"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.b}, {f.c}}, q.Evaluate(f.w))
}

func TestWhereAnyUnion(t *testing.T) {
	f := newFixture()
	f.g.AddTags(f.a, f.b, social.TagDating)
	f.g.AddTags(f.c, f.b, social.TagSpouse)
	f.g.AddTags(f.b, f.c, social.TagFriend)

	q := query.Must([]string{"X", "Y"},
		query.WhereAny(
			query.Where(query.RelationshipHasTags(social.TagDating), "X", "Y"),
			query.Where(query.RelationshipHasTags(social.TagSpouse), "X", "Y"),
		),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.a, f.b}, {f.c, f.b}}, q.Evaluate(f.w))
}

func TestFilterAndInactiveEdges(t *testing.T) {
	f := newFixture()
	f.g.AddTags(f.a, f.b, social.TagFriend)
	f.g.AddTags(f.a, f.c, social.TagFriend)

	notRetired := func(w *ecs.World, ids ...ecs.EntityID) bool { return !ecs.Has[retired](w, ids[0]) }
	q := query.Must([]string{"X", "Y"},
		query.Where(query.RelationshipHasTags(social.TagFriend), "X", "Y"),
		query.Filter(notRetired, "Y"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.a, f.b}}, q.Evaluate(f.w))

	f.g.Deactivate(f.b)
	assert.Empty(t, q.Evaluate(f.w))
}

func TestEvaluateWithInitialBinding(t *testing.T) {
	f := newFixture()
	f.g.AddTags(f.a, f.b, social.TagFriend)
	f.g.AddTags(f.c, f.b, social.TagFriend)

	q := query.Must([]string{"X", "Y"},
		query.Where(query.RelationshipHasTags(social.TagFriend), "X", "Y"),
	)
	assert.Len(t, q.Evaluate(f.w), 2)
	assert.Equal(t, [][]ecs.EntityID{{f.c, f.b}}, q.EvaluateWith(f.w, map[string]ecs.EntityID{"X": f.c}))
	assert.Empty(t, q.EvaluateWith(f.w, map[string]ecs.EntityID{"X": f.b}))
}

func TestResultsAreDeduplicated(t *testing.T) {
	f := newFixture()
	f.g.AddTags(f.a, f.b, social.TagFriend)
	f.g.AddTags(f.a, f.c, social.TagFriend)

	q := query.Must([]string{"X"},
		query.Where(query.RelationshipHasTags(social.TagFriend), "X", "Y"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.a}}, q.Evaluate(f.w))
}

func TestTupleFunc(t *testing.T) {
	f := newFixture()
	pairs := query.TupleFunc(2, func(w *ecs.World) [][]ecs.EntityID {
		return [][]ecs.EntityID{{f.c, f.a}}
	})
	q := query.Must([]string{"X", "Y"},
		query.HasComponents("X", ecs.TypeOf[retired]()),
		query.Where(pairs, "X", "Y"),
	)
	assert.Equal(t, [][]ecs.EntityID{{f.c, f.a}}, q.Evaluate(f.w))
}

func TestConstructionFailsFast(t *testing.T) {
	cases := []struct {
		name string
		find []string
		cls  []query.Clause
		err  error
	}{
		{
			name: "trailing space in role name",
			find: []string{"Initiator "},
			cls:  []query.Clause{query.HasComponents("Initiator", ecs.TypeOf[person]())},
			err:  query.ErrInvalidVariable,
		},
		{
			name: "find variable never bound",
			find: []string{"X", "Y"},
			cls:  []query.Clause{query.HasComponents("X", ecs.TypeOf[person]())},
			err:  query.ErrUnboundVariable,
		},
		{
			name: "filter before binding",
			find: []string{"X"},
			cls: []query.Clause{
				query.NotEqual("X", "Y"),
				query.HasComponents("X", ecs.TypeOf[person]()),
			},
			err: query.ErrUnboundVariable,
		},
		{
			name: "arity mismatch",
			find: []string{"X"},
			cls:  []query.Clause{query.Where(query.RelationshipHasTags(social.TagFriend), "X")},
			err:  query.ErrInvalidClause,
		},
		{
			name: "where_any partially binds",
			find: []string{"X", "Y"},
			cls: []query.Clause{
				query.WhereAny(
					query.Where(query.RelationshipHasTags(social.TagFriend), "X", "Y"),
					query.HasComponents("X", ecs.TypeOf[person]()),
				),
			},
			err: query.ErrUnboundVariable,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := query.New(tc.find, tc.cls...)
			assert.ErrorIs(t, err, tc.err)
		})
	}
	assert.Panics(t, func() { query.Must([]string{"bad name"}) })
}

func TestEmptyFindReturnsNothing(t *testing.T) {
	f := newFixture()
	q := query.Must(nil, query.HasComponents("X", ecs.TypeOf[person]()))
	assert.Empty(t, q.Evaluate(f.w))
}

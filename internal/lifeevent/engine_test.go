package lifeevent_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/query"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
)

type person struct{}
type jobless struct{ Days int }

func newWorld(seed int64) (*ecs.World, *lifeevent.Dispatcher) {
	w := ecs.NewWorld()
	ecs.SetResource(w, entropy.New(seed))
	ecs.SetResource(w, &simtime.Clock{Now: simtime.New(1900, 1, 1)})
	ecs.SetResource(w, social.NewGraph(nil))
	d := lifeevent.NewDispatcher(lifeevent.RunID(seed), lifeevent.NewGlobalHistory())
	ecs.SetResource(w, d)
	return w, d
}

func joblessOver(min int) lifeevent.Binder {
	return lifeevent.Eligible([]reflect.Type{ecs.TypeOf[jobless]()}, func(w *ecs.World, id ecs.EntityID) bool {
		return ecs.Get[jobless](w, id).Days > min
	})
}

func noop(*ecs.World, *lifeevent.Instance) error { return nil }

func TestBinderThreshold(t *testing.T) {
	w, _ := newWorld(1)
	at30 := w.Spawn("at30", &jobless{Days: 30})
	at31 := w.Spawn("at31", &jobless{Days: 31})
	w.Spawn("employed", &person{})

	b := joblessOver(30)
	assert.False(t, b.Validate(w, at30))
	assert.True(t, b.Validate(w, at31))
	assert.Equal(t, []ecs.EntityID{at31}, b.Enumerate(w))
}

func TestGateAndHistory(t *testing.T) {
	w, d := newWorld(5)
	a := w.Spawn("a", &jobless{Days: 40})

	var heard []string
	d.Listen(func(_ *ecs.World, inst *lifeevent.Instance) { heard = append(heard, "first:"+inst.Type) })
	d.Listen(func(_ *ecs.World, inst *lifeevent.Instance) { heard = append(heard, "second:"+inst.Type) })

	e := lifeevent.NewEngine()
	never := &lifeevent.Definition{
		Name:        "Never",
		Roles:       []lifeevent.RoleSpec{{Name: "Person", Binder: joblessOver(30)}},
		Probability: lifeevent.Constant(0),
		Effect:      func(*ecs.World, *lifeevent.Instance) error { t.Fatal("gated event ran its effect"); return nil },
	}
	always := &lifeevent.Definition{
		Name:  "Always",
		Roles: []lifeevent.RoleSpec{{Name: "Person", Binder: joblessOver(30)}, {Name: "Witness", Binder: joblessOver(30)}},
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			ecs.Get[jobless](w, inst.Role("Person")).Days = 0
			return nil
		},
	}
	require.NoError(t, e.Register(never, always))

	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, "Always", fired[0].Type)
	assert.Equal(t, 0, ecs.Get[jobless](w, a).Days)

	// Same entity in two roles is recorded once.
	h := ecs.Get[lifeevent.PersonalHistory](w, a)
	require.NotNil(t, h)
	assert.Len(t, h.Events, 1)
	assert.Equal(t, 1, h.Count("Always"))
	assert.Same(t, fired[0], h.Last("Always"))

	assert.Equal(t, []string{"first:Always", "second:Always"}, heard)
	assert.Equal(t, 1, d.History().Len())
	got, ok := d.History().Lookup(fired[0].UID)
	assert.True(t, ok)
	assert.Same(t, fired[0], got)
}

func TestDistinctRoles(t *testing.T) {
	w, _ := newWorld(1)
	a := w.Spawn("a", &jobless{Days: 40})
	b := w.Spawn("b", &jobless{Days: 40})

	e := lifeevent.NewEngine()
	def := &lifeevent.Definition{
		Name:     "Pair",
		Roles:    []lifeevent.RoleSpec{{Name: "X", Binder: joblessOver(0)}, {Name: "Y", Binder: joblessOver(0)}},
		Distinct: true,
		Effect:   noop,
	}
	require.NoError(t, e.Register(def))
	cands := e.Candidates(w, def)
	assert.Equal(t, [][]lifeevent.Role{
		{{Name: "X", Entity: a}, {Name: "Y", Entity: b}},
		{{Name: "X", Entity: b}, {Name: "Y", Entity: a}},
	}, cands)
}

func TestSelectOneIsWeighted(t *testing.T) {
	w, _ := newWorld(11)
	ids := []ecs.EntityID{
		w.Spawn("a", &person{}),
		w.Spawn("b", &person{}),
		w.Spawn("c", &person{}),
	}
	weights := map[ecs.EntityID]float64{ids[0]: 1, ids[1]: 1, ids[2]: 8}
	counts := map[ecs.EntityID]int{}

	e := lifeevent.NewEngine()
	def := &lifeevent.Definition{
		Name:   "Pick",
		Roles:  []lifeevent.RoleSpec{{Name: "Who", Binder: lifeevent.Eligible([]reflect.Type{ecs.TypeOf[person]()}, nil)}},
		Select: lifeevent.SelectOne,
		Weight: func(_ *ecs.World, roles []lifeevent.Role) float64 { return weights[roles[0].Entity] },
		Effect: func(_ *ecs.World, inst *lifeevent.Instance) error {
			counts[inst.Role("Who")]++
			return nil
		},
	}
	require.NoError(t, e.Register(def))

	const n = 10000
	for i := 0; i < n; i++ {
		_, err := e.Evaluate(w, def)
		require.NoError(t, err)
	}
	assert.InDelta(t, 0.8, float64(counts[ids[2]])/n, 0.02)

	for k := range weights {
		weights[k] = 0
	}
	fired, err := e.Evaluate(w, def)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestSelectEachRevalidates(t *testing.T) {
	w, d := newWorld(3)
	g := ecs.MustResource[*social.Graph](w)
	a := w.Spawn("a", &person{})
	b := w.Spawn("b", &person{})
	g.AddTags(a, b, social.TagFriend)
	g.AddTags(b, a, social.TagFriend)

	pattern := query.Must([]string{"X", "Y"},
		query.Where(query.RelationshipHasTags(social.TagFriend), "X", "Y"),
		query.WhereNot(query.RelationshipHasTags(social.TagDating), "X", "Y"),
	)
	e := lifeevent.NewEngine()
	require.NoError(t, e.Register(&lifeevent.Definition{
		Name:    "StartDating",
		Pattern: pattern,
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			x, y := inst.Role("X"), inst.Role("Y")
			g.AddTags(x, y, social.TagDating)
			g.AddTags(y, x, social.TagDating)
			return nil
		},
	}))

	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, a, fired[0].Role("X"))
	assert.Equal(t, 1, d.History().Len())
}

func TestEffectErrorPropagates(t *testing.T) {
	w, d := newWorld(1)
	w.Spawn("a", &person{})
	boom := errors.New("boom")

	e := lifeevent.NewEngine()
	require.NoError(t, e.Register(&lifeevent.Definition{
		Name:   "Broken",
		Roles:  []lifeevent.RoleSpec{{Name: "Who", Binder: lifeevent.Eligible(nil, nil)}},
		Effect: func(*ecs.World, *lifeevent.Instance) error { return boom },
	}))
	_, err := e.Step(w)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, d.History().Len())
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	w, _ := newWorld(1)
	w.Spawn("a", &person{})
	e := lifeevent.NewEngine()
	require.NoError(t, e.Register(&lifeevent.Definition{
		Name:   "Any",
		Roles:  []lifeevent.RoleSpec{{Name: "Who", Binder: lifeevent.Eligible(nil, nil)}},
		Effect: noop,
	}))
	e.SetEnabled("Any", false)
	assert.False(t, e.Enabled("Any"))
	fired, err := e.Step(w)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestRegisterValidation(t *testing.T) {
	binder := lifeevent.Eligible(nil, nil)
	q := query.Must([]string{"X"}, query.HasComponents("X", ecs.TypeOf[person]()))

	cases := []struct {
		name string
		def  *lifeevent.Definition
		err  error
	}{
		{"trailing space in role", &lifeevent.Definition{Name: "E", Roles: []lifeevent.RoleSpec{{Name: "Initiator ", Binder: binder}}, Effect: noop}, query.ErrInvalidVariable},
		{"pattern and roles", &lifeevent.Definition{Name: "E", Pattern: q, Roles: []lifeevent.RoleSpec{{Name: "X", Binder: binder}}, Effect: noop}, lifeevent.ErrInvalidDefinition},
		{"neither", &lifeevent.Definition{Name: "E", Effect: noop}, lifeevent.ErrInvalidDefinition},
		{"no effect", &lifeevent.Definition{Name: "E", Pattern: q}, lifeevent.ErrInvalidDefinition},
		{"duplicate role", &lifeevent.Definition{Name: "E", Roles: []lifeevent.RoleSpec{{Name: "X", Binder: binder}, {Name: "X", Binder: binder}}, Effect: noop}, lifeevent.ErrInvalidDefinition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, lifeevent.NewEngine().Register(tc.def), tc.err)
		})
	}

	e := lifeevent.NewEngine()
	require.NoError(t, e.Register(&lifeevent.Definition{Name: "E", Pattern: q, Effect: noop}))
	assert.Error(t, e.Register(&lifeevent.Definition{Name: "E", Pattern: q, Effect: noop}))
	_, err := e.Get("missing")
	assert.Error(t, err)
}

func TestSeededReplayIsDeterministic(t *testing.T) {
	run := func(seed int64) []string {
		w, d := newWorld(seed)
		for i := 0; i < 6; i++ {
			w.Spawn("p", &jobless{Days: 10 * i})
		}
		e := lifeevent.NewEngine()
		require.NoError(t, e.Register(&lifeevent.Definition{
			Name:        "Leave",
			Roles:       []lifeevent.RoleSpec{{Name: "Who", Binder: joblessOver(-1)}},
			Probability: lifeevent.Constant(0.3),
			Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
				ecs.Get[jobless](w, inst.Role("Who")).Days++
				return nil
			},
		}))
		for tick := 0; tick < 20; tick++ {
			_, err := e.Step(w)
			require.NoError(t, err)
		}
		var out []string
		for _, inst := range d.History().Events() {
			out = append(out, inst.UID.String()+" "+inst.String())
		}
		return out
	}

	first := run(99)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, run(99))
	assert.NotEqual(t, first, run(100))
}

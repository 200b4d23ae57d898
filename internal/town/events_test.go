package town

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
)

type builder func(*config.Config) (*lifeevent.Definition, error)

func engineFor(t *testing.T, build builder, name string) (*lifeevent.Engine, *lifeevent.Definition) {
	t.Helper()
	def, err := build(always(name))
	require.NoError(t, err)
	e := lifeevent.NewEngine()
	require.NoError(t, e.Register(def))
	return e, def
}

func personOfSex(t *testing.T, w *ecs.World, age float64, female bool) ecs.EntityID {
	t.Helper()
	id, err := ecs.MustResource[*Spawner](w).SpawnCharacter(w, CharacterSpec{Age: age, Female: &female})
	require.NoError(t, err)
	return id
}

func TestBecomeFriends(t *testing.T) {
	t.Run("mutual friendship", func(t *testing.T) {
		w := newTown(t, 11)
		e, def := engineFor(t, becomeFriends, EventBecomeFriends)
		a, b := person(t, w, 30), person(t, w, 32)
		tagBoth(w, a, b, social.TagEnemy)
		setStat(w, a, b, social.Friendship, 0.8)
		setStat(w, b, a, social.Friendship, 0.8)

		fired, err := e.Step(w)
		require.NoError(t, err)
		require.Len(t, fired, 1)

		g := ecs.MustResource[*social.Graph](w)
		assert.True(t, g.HasTags(a, b, social.TagFriend))
		assert.True(t, g.HasTags(b, a, social.TagFriend))
		assert.False(t, g.HasTags(a, b, social.TagEnemy))
		assert.Empty(t, e.Candidates(w, def), "already friends")
	})

	t.Run("one sided", func(t *testing.T) {
		w := newTown(t, 11)
		e, def := engineFor(t, becomeFriends, EventBecomeFriends)
		a, b := person(t, w, 30), person(t, w, 32)
		setStat(w, a, b, social.Friendship, 0.8)
		setStat(w, b, a, social.Friendship, 0.5)
		assert.Empty(t, e.Candidates(w, def))
	})
}

func TestBecomeEnemies(t *testing.T) {
	t.Run("mutual dislike", func(t *testing.T) {
		w := newTown(t, 12)
		e, _ := engineFor(t, becomeEnemies, EventBecomeEnemies)
		a, b := person(t, w, 40), person(t, w, 41)
		tagBoth(w, a, b, social.TagFriend)
		setStat(w, a, b, social.Friendship, -0.5)
		setStat(w, b, a, social.Friendship, -0.5)

		fired, err := e.Step(w)
		require.NoError(t, err)
		require.Len(t, fired, 1)

		g := ecs.MustResource[*social.Graph](w)
		assert.True(t, g.HasTags(a, b, social.TagEnemy))
		assert.True(t, g.HasTags(b, a, social.TagEnemy))
		assert.False(t, g.HasTags(b, a, social.TagFriend))
	})

	t.Run("above threshold", func(t *testing.T) {
		w := newTown(t, 12)
		e, def := engineFor(t, becomeEnemies, EventBecomeEnemies)
		a, b := person(t, w, 40), person(t, w, 41)
		setStat(w, a, b, social.Friendship, -0.5)
		setStat(w, b, a, social.Friendship, -0.1)
		assert.Empty(t, e.Candidates(w, def))
	})
}

func TestGetMarriedAfterAYearOfDating(t *testing.T) {
	w := newTown(t, 13)
	dating, _ := engineFor(t, startDating, EventStartDating)
	e, def := engineFor(t, getMarried, EventGetMarried)

	a, b := person(t, w, 25), person(t, w, 26)
	setStat(w, a, b, social.Romance, 0.8)
	setStat(w, b, a, social.Romance, 0.8)
	fired, err := dating.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)

	assert.Empty(t, e.Candidates(w, def), "just started dating")

	clock := ecs.MustResource[*simtime.Clock](w)
	clock.Now = clock.Now.AddMonths(13)
	fired, err = e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)

	g := ecs.MustResource[*social.Graph](w)
	assert.True(t, g.HasTags(a, b, social.TagSpouse, social.TagSignificantOther))
	assert.True(t, g.HasTags(b, a, social.TagSpouse))
	assert.False(t, g.HasTags(a, b, social.TagDating))
}

func TestGetMarriedNeedsAdults(t *testing.T) {
	w := newTown(t, 13)
	e, def := engineFor(t, getMarried, EventGetMarried)
	a, b := person(t, w, 16), person(t, w, 17)
	tagBoth(w, a, b, social.TagDating, social.TagSignificantOther)
	setStat(w, a, b, social.Romance, 0.9)
	setStat(w, b, a, social.Romance, 0.9)
	assert.Empty(t, e.Candidates(w, def))
}

func TestDivorceMovesOtherOut(t *testing.T) {
	w := newTown(t, 14)
	e, def := engineFor(t, divorce, EventDivorce)
	spawner := ecs.MustResource[*Spawner](w)
	district := newDistrict(w)
	home, err := spawner.SpawnResidence(w, district)
	require.NoError(t, err)
	spare, err := spawner.SpawnResidence(w, district)
	require.NoError(t, err)

	a, b := person(t, w, 40), person(t, w, 42)
	require.NoError(t, SetResidence(w, a, home, true))
	require.NoError(t, SetResidence(w, b, home, true))
	Marry(w, a, b)

	setStat(w, a, b, social.Romance, -0.5)
	setStat(w, b, a, social.Romance, -0.1)
	assert.Empty(t, e.Candidates(w, def), "only one of them wants out")

	setStat(w, b, a, social.Romance, -0.5)
	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)

	g := ecs.MustResource[*social.Graph](w)
	assert.False(t, g.HasTags(a, b, social.TagSpouse))
	assert.False(t, g.HasTags(b, a, social.TagFamily))
	other := fired[0].Role(RoleOther)
	assert.Equal(t, spare, ecs.Get[Resident](w, other).Residence)
	assert.True(t, attrs(w, a).Traits().Has(TraitHeartbroken))
	assert.True(t, attrs(w, b).Traits().Has(TraitHeartbroken))
}

func TestGotPregnant(t *testing.T) {
	for _, tag := range []string{social.TagSpouse, social.TagDating} {
		t.Run(tag, func(t *testing.T) {
			w := newTown(t, 15)
			e, def := engineFor(t, gotPregnant, EventGotPregnant)
			mother, father := personOfSex(t, w, 28, true), personOfSex(t, w, 30, false)
			tagBoth(w, mother, father, tag)

			fired, err := e.Step(w)
			require.NoError(t, err)
			require.Len(t, fired, 1)

			p := ecs.Get[Pregnant](w, mother)
			require.NotNil(t, p)
			assert.Equal(t, father, p.Partner)
			assert.Empty(t, e.Candidates(w, def), "already expecting")
		})
	}

	t.Run("strangers", func(t *testing.T) {
		w := newTown(t, 15)
		e, def := engineFor(t, gotPregnant, EventGotPregnant)
		personOfSex(t, w, 28, true)
		personOfSex(t, w, 30, false)
		assert.Empty(t, e.Candidates(w, def))
	})
}

func TestDieOfOldAge(t *testing.T) {
	w := newTown(t, 16)
	e, def := engineFor(t, dieOfOldAge, EventDieOfOldAge)
	old, young := person(t, w, 80), person(t, w, 80)
	ecs.Get[Lifespan](w, old).Years = 75
	ecs.Get[Lifespan](w, young).Years = 90

	cands := e.Candidates(w, def)
	require.Len(t, cands, 1)
	assert.Equal(t, old, cands[0][0].Entity)

	_, err := e.Step(w)
	require.NoError(t, err)
	assert.False(t, IsAlive(w, old))
	assert.True(t, ecs.Has[Deceased](w, old))
	assert.True(t, IsAlive(w, young))
}

func TestGoOutOfBusiness(t *testing.T) {
	w := newTown(t, 17)
	e, _ := engineFor(t, goOutOfBusiness, EventGoOutOfBusiness)
	district := newDistrict(w)
	spawner := ecs.MustResource[*Spawner](w)
	fresh, err := spawner.SpawnBusiness(w, district, "bakery")
	require.NoError(t, err)
	aged, err := spawner.SpawnBusiness(w, district, "smithy")
	require.NoError(t, err)
	worker := person(t, w, 30)
	require.NoError(t, AddEmployee(w, aged, worker, "smith"))

	b := ecs.Get[Business](w, aged)
	b.Founded = b.Founded.AddDays(-int(b.Lifespan+1) * simtime.DaysPerYear)

	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.True(t, ecs.Has[ClosedForBusiness](w, aged))
	assert.True(t, ecs.Has[Unemployed](w, worker), "staff are laid off")
	assert.True(t, ecs.Has[OpenForBusiness](w, fresh), "young businesses never close")
}

func TestFindOwnPlace(t *testing.T) {
	setup := func(t *testing.T, spareHome bool) (*ecs.World, ecs.EntityID, ecs.EntityID) {
		w := newTown(t, 18)
		spawner := ecs.MustResource[*Spawner](w)
		district := newDistrict(w)
		home, err := spawner.SpawnResidence(w, district)
		require.NoError(t, err)
		parent, grown := person(t, w, 50), person(t, w, 22)
		require.NoError(t, SetResidence(w, parent, home, true))
		require.NoError(t, SetResidence(w, grown, home, false))
		business, err := spawner.SpawnBusiness(w, district, "bakery")
		require.NoError(t, err)
		require.NoError(t, AddEmployee(w, business, grown, "baker"))
		if spareHome {
			_, err := spawner.SpawnResidence(w, district)
			require.NoError(t, err)
		}
		return w, parent, grown
	}

	t.Run("vacant home", func(t *testing.T) {
		w, parent, grown := setup(t, true)
		e, def := engineFor(t, findOwnPlace, EventFindOwnPlace)
		cands := e.Candidates(w, def)
		require.Len(t, cands, 1, "owners already have their own place")
		assert.Equal(t, grown, cands[0][0].Entity)

		_, err := e.Step(w)
		require.NoError(t, err)
		r := ecs.Get[Residence](w, ecs.Get[Resident](w, grown).Residence)
		assert.Contains(t, r.Owners, grown)
		assert.NotEqual(t, ecs.Get[Resident](w, parent).Residence, ecs.Get[Resident](w, grown).Residence)
	})

	t.Run("no vacancy", func(t *testing.T) {
		w, _, grown := setup(t, false)
		e, _ := engineFor(t, findOwnPlace, EventFindOwnPlace)
		_, err := e.Step(w)
		require.NoError(t, err)
		assert.True(t, ecs.Has[Departed](w, grown))
		assert.False(t, IsAlive(w, grown))
	})
}

func TestFindJob(t *testing.T) {
	w := newTown(t, 19)
	e, def := engineFor(t, findJob, EventFindJob)
	business, err := ecs.MustResource[*Spawner](w).SpawnBusiness(w, newDistrict(w), "smithy")
	require.NoError(t, err)

	teen := person(t, w, 15)
	require.NoError(t, ecs.Add(w, teen, &Unemployed{}))
	assert.Empty(t, e.Candidates(w, def), "adolescents do not look for work")

	seeker := person(t, w, 24)
	require.NoError(t, MakeUnemployed(w, seeker))
	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)

	occ := ecs.Get[Occupation](w, seeker)
	require.NotNil(t, occ)
	assert.Equal(t, business, occ.Business)
	assert.Equal(t, "smith", occ.Role)
	assert.False(t, ecs.Has[Unemployed](w, seeker))
	assert.Nil(t, ecs.Get[Occupation](w, teen))
}

func TestFindJobSkipsClosedBusinesses(t *testing.T) {
	w := newTown(t, 19)
	e, def := engineFor(t, findJob, EventFindJob)
	business, err := ecs.MustResource[*Spawner](w).SpawnBusiness(w, newDistrict(w), "smithy")
	require.NoError(t, err)
	require.NoError(t, CloseBusiness(w, business))

	seeker := person(t, w, 24)
	require.NoError(t, MakeUnemployed(w, seeker))
	assert.Empty(t, e.Candidates(w, def))
}

func TestFindJobIgnoresBusinessesWithoutFittingRoles(t *testing.T) {
	w := newTown(t, 19)
	e, def := engineFor(t, findJob, EventFindJob)
	smith, err := ecs.MustResource[*Content](w).Jobs.Get("smith")
	require.NoError(t, err)
	smith.MinStage = Adult
	business, err := ecs.MustResource[*Spawner](w).SpawnBusiness(w, newDistrict(w), "smithy")
	require.NoError(t, err)

	seeker := person(t, w, 24)
	require.NoError(t, MakeUnemployed(w, seeker))
	cands := e.Candidates(w, def)
	require.Len(t, cands, 1)
	assert.Zero(t, def.Weight(w, cands[0]))

	fired, err := e.Step(w)
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Empty(t, ecs.Get[Business](w, business).Employees())
}

func TestBecomeBusinessOwner(t *testing.T) {
	w := newTown(t, 20)
	e, def := engineFor(t, becomeBusinessOwner, EventBecomeBusinessOwner)
	spawner := ecs.MustResource[*Spawner](w)
	district := newDistrict(w)
	owned, err := spawner.SpawnBusiness(w, district, "tavern")
	require.NoError(t, err)
	require.NoError(t, SetOwner(w, owned, person(t, w, 45)))

	seeker := person(t, w, 35)
	require.NoError(t, MakeUnemployed(w, seeker))
	assert.Empty(t, e.Candidates(w, def), "every business has an owner")

	ownerless, err := spawner.SpawnBusiness(w, district, "bakery")
	require.NoError(t, err)
	fired, err := e.Step(w)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, seeker, ecs.Get[Business](w, ownerless).Owner)
	assert.NotEqual(t, seeker, ecs.Get[Business](w, owned).Owner)
}

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/ecs"
)

func recorder(log *[]string, name string, err error) ecs.System {
	return ecs.SystemFunc{Label: name, Fn: func(*ecs.World) error {
		*log = append(*log, name)
		return err
	}}
}

func TestGroupOrder(t *testing.T) {
	var log []string
	s := NewScheduler()
	s.Add(LateUpdate, recorder(&log, "late", nil))
	s.Add(Update, recorder(&log, "update1", nil), recorder(&log, "update2", nil))
	s.Add(EarlyUpdate, recorder(&log, "early", nil))
	s.Add(Initialization, recorder(&log, "init", nil))

	w := ecs.NewWorld()
	require.NoError(t, s.Step(w))
	assert.Equal(t, []string{"init", "early", "update1", "update2", "late"}, log)
	assert.False(t, s.Active(Initialization))

	log = nil
	require.NoError(t, s.Step(w))
	assert.Equal(t, []string{"early", "update1", "update2", "late"}, log)
}

func TestErrorAbortsTick(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	s := NewScheduler()
	s.Add(Update, recorder(&log, "a", nil), recorder(&log, "b", boom), recorder(&log, "c", nil))
	s.Add(LateUpdate, recorder(&log, "late", nil))

	err := s.Step(ecs.NewWorld())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "update/b")
	assert.Equal(t, []string{"a", "b"}, log)
}

func TestInitializeRunsOnce(t *testing.T) {
	var log []string
	s := NewScheduler()
	s.Add(Initialization, recorder(&log, "init", nil))
	w := ecs.NewWorld()

	require.NoError(t, s.Initialize(w))
	require.NoError(t, s.Initialize(w))
	require.NoError(t, s.Step(w))
	assert.Equal(t, []string{"init"}, log)
}

func TestDeactivatedGroupIsSkipped(t *testing.T) {
	var log []string
	s := NewScheduler()
	s.Add(EarlyUpdate, recorder(&log, "early", nil))
	s.SetActive(EarlyUpdate, false)
	require.NoError(t, s.Step(ecs.NewWorld()))
	assert.Empty(t, log)
	assert.Len(t, s.Systems(EarlyUpdate), 1)
}

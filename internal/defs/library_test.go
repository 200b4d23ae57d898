package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type role struct{ id string }

func (r role) DefinitionID() string { return r.id }

func TestLibrary(t *testing.T) {
	lib := NewLibrary[role]("job role")
	require.NoError(t, lib.Add(role{"cashier"}))
	require.NoError(t, lib.Add(role{"baker"}))

	got, err := lib.Get("cashier")
	require.NoError(t, err)
	assert.Equal(t, "cashier", got.id)

	_, err = lib.Get("mayor")
	assert.ErrorIs(t, err, ErrUnknownDefinition)
	assert.Contains(t, err.Error(), `job role "mayor"`)

	assert.ErrorIs(t, lib.Add(role{"baker"}), ErrDuplicateDefinition)
	assert.Error(t, lib.Add(role{""}))
	assert.Equal(t, []string{"baker", "cashier"}, lib.IDs())
	assert.Equal(t, 2, lib.Len())
}

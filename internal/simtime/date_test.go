package simtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateFields(t *testing.T) {
	d := New(1850, 3, 15)
	assert.Equal(t, 1850, d.Year())
	assert.Equal(t, 3, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, "15 Mar 1850", d.String())

	next := d.AddMonths(10)
	assert.Equal(t, 1851, next.Year())
	assert.Equal(t, 1, next.Month())
	assert.True(t, d.Before(next))
	assert.InDelta(t, 10.0/12, next.YearsSince(d), 1e-9)
}

func TestClockAdvance(t *testing.T) {
	c := &Clock{Now: New(1900, 12, 30)}
	c.Advance(1)
	assert.Equal(t, New(1901, 1, 1), c.Now)
}

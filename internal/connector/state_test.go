package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_DefaultsToAnd(t *testing.T) {
	s := NewState()
	assert.Equal(t, And, s.Get("g1"))

	var zero State
	assert.Equal(t, And, zero.Get("g1"))

	var nilState *State
	assert.Equal(t, And, nilState.Get("g1"))
	assert.Equal(t, 0, nilState.Len())
}

func TestCycle_Rotation(t *testing.T) {
	s := NewState()

	assert.Equal(t, Or, s.Cycle("g1"))
	assert.Equal(t, AndNot, s.Cycle("g1"))
	assert.Equal(t, And, s.Cycle("g1"))
	assert.Equal(t, Or, s.Cycle("g1"))

	assert.Equal(t, Or, s.Get("g1"))
	assert.Equal(t, And, s.Get("g2"), "other gaps are unaffected")
}

func TestLookup(t *testing.T) {
	s := NewState()
	_, ok := s.Lookup("g1")
	assert.False(t, ok)

	s.Set("g1", And)
	c, ok := s.Lookup("g1")
	assert.True(t, ok)
	assert.Equal(t, And, c)
}

func TestDelete(t *testing.T) {
	s := NewState()
	s.Set("b", Or)
	s.Set("a", AndNot)
	s.Set(ConditionsKey, Or)

	s.Delete("a")
	s.Delete("missing")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, And, s.Get("a"))
	assert.Equal(t, map[string]Connector{"b": Or, ConditionsKey: Or}, s.Map())
}

func TestMapRoundTrip(t *testing.T) {
	s := FromMap(map[string]Connector{"g1": "or", "g2": "AND_NOT", "g3": "xor"})

	assert.Equal(t, map[string]Connector{"g1": Or, "g2": AndNot}, s.Map())
}

func TestParseConnector(t *testing.T) {
	for in, want := range map[string]Connector{"and": And, "OR": Or, "and not": AndNot, "and_not": AndNot} {
		got, ok := ParseConnector(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseConnector("nor")
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "AND", And.Label())
	assert.Equal(t, "OR", Or.Label())
	assert.Equal(t, "AND NOT", AndNot.Label())
}

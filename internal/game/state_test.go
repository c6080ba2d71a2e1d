package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thraizz/azoth-server-go/internal/game/counters"
)

func TestCloneIsDeep(t *testing.T) {
	e := startedEngine(t)
	fox := fieldFamiliar(t, e, 0, vanillaDef)
	fox.Counters.Add(counters.Strength, 1)
	e.state.Stack.Push(&AbilityItem{ID: "ab", Card: fox, Ability: Ability{ID: "x"}, Controller: 0})

	cpy := e.state.Clone()
	require.Equal(t, e.state.Checksum(), cpy.Checksum())

	c, _ := cpy.Player(0).Field.Find(fox.ID)
	c.Tapped = true
	c.Counters.Add(counters.Strength, 3)
	assert.False(t, fox.Tapped)
	assert.Equal(t, 1, fox.Counters.Count(counters.Strength))

	item, ok := cpy.Stack.Peek()
	require.True(t, ok)
	assert.Same(t, c, item.SourceCard(), "cloned ability points at the cloned field card")
}

func TestVerifyIntegrityDetectsProblems(t *testing.T) {
	e := startedEngine(t)
	require.NoError(t, e.state.VerifyIntegrity(80))
	assert.Error(t, e.state.VerifyIntegrity(81))

	pl := e.state.Player(0)
	pl.Graveyard.Add(pl.Hand[0])
	assert.ErrorContains(t, e.state.VerifyIntegrity(80), "is in both")
}

func TestCardCountIncludesStackHeldCards(t *testing.T) {
	e := startedEngine(t)
	pl := e.state.Player(0)
	c, _ := pl.Hand.TakeFirst()
	e.state.Stack.Push(&SpellItem{ID: "s", Card: c, Controller: 0})

	assert.Equal(t, 80, e.state.CardCount())
	require.NoError(t, e.state.VerifyIntegrity(80))

	found, zone, ok := e.state.FindCard(c.ID)
	require.True(t, ok)
	assert.Equal(t, ZoneStack, zone)
	assert.Same(t, c, found)
}

func TestChecksumTracksChanges(t *testing.T) {
	e := startedEngine(t)
	before := e.state.Checksum()
	assert.Len(t, before, 64)

	e.state.Player(1).Hand[0].Tapped = true
	assert.NotEqual(t, before, e.state.Checksum())
}

func TestPileOperations(t *testing.T) {
	a := newCard("a", 0, vanillaDef)
	b := newCard("b", 0, vanillaDef)
	c := newCard("c", 0, vanillaDef)
	var p Pile
	p.Add(a)
	p.Add(b)
	p.Add(c)

	assert.Equal(t, []string{"a", "b", "c"}, p.IDs())
	got, ok := p.Take("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	_, ok = p.Take("b")
	assert.False(t, ok)

	first, _ := p.TakeFirst()
	last, _ := p.TakeLast()
	assert.Same(t, a, first)
	assert.Same(t, c, last)
	_, ok = p.TakeLast()
	assert.False(t, ok)
}

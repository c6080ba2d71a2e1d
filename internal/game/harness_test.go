package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/azoth-server-go/internal/game/azoth"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

const testSeed = 42

var (
	vanillaDef = &CardDefinition{
		Name:      "Ember Fox",
		Type:      CardTypeFamiliar,
		Cost:      azoth.Cost{Generic: 1},
		Elements:  []azoth.Element{azoth.ElementFire},
		Power:     3,
		Toughness: 3,
	}
	wallDef = &CardDefinition{
		Name:      "Stone Wall",
		Type:      CardTypeFamiliar,
		Cost:      azoth.Cost{Generic: 2},
		Elements:  []azoth.Element{azoth.ElementEarth},
		Power:     1,
		Toughness: 5,
	}
	boltDef = &CardDefinition{
		Name:     "Spark Bolt",
		Type:     CardTypeSpell,
		Cost:     azoth.Cost{Generic: 1, Elements: []azoth.Element{azoth.ElementFire}},
		Elements: []azoth.Element{azoth.ElementFire},
		Effect:   "damage 1",
	}
	burstDef = &CardDefinition{
		Name:      "Tidal Ward",
		Type:      CardTypeSpell,
		Cost:      azoth.Cost{Generic: 2},
		Elements:  []azoth.Element{azoth.ElementWater},
		Abilities: []Ability{{ID: "burst", Name: "Burst", Kind: AbilityBurst, Effect: "draw 1"}},
	}
	totemDef = &CardDefinition{
		Name:      "Wind Totem",
		Type:      CardTypeFamiliar,
		Cost:      azoth.Cost{Generic: 1},
		Power:     0,
		Toughness: 2,
		Abilities: []Ability{{ID: "gust", Name: "Gust", Kind: AbilityActivated, Cost: azoth.Cost{Generic: 1}, Effect: "draw 1"}},
	}
)

func deckOf(def *CardDefinition, n int) []*CardDefinition {
	deck := make([]*CardDefinition, n)
	for i := range deck {
		deck[i] = def
	}
	return deck
}

func testSetups() []PlayerSetup {
	return []PlayerSetup{
		{Name: "Alice", Flag: "fire", Deck: deckOf(vanillaDef, 40)},
		{Name: "Bob", Flag: "water", Deck: deckOf(vanillaDef, 40)},
	}
}

// eventLog collects published events.
type eventLog struct {
	events []rules.Event
}

func (l *eventLog) listen(e rules.Event) { l.events = append(l.events, e) }

func (l *eventLog) types() []rules.EventType {
	out := make([]rules.EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func (l *eventLog) reset() { l.events = nil }

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithSeed(testSeed),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	}
	return NewEngine(append(base, opts...)...)
}

// startedEngine returns an engine in turn 1, start phase, player 0.
func startedEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := newTestEngine(t, opts...)
	require.NoError(t, e.InitializeGame(testSetups()))
	require.NoError(t, e.StartGame())
	return e
}

func act(t *testing.T, e *Engine, player int, typ ActionType, data any) *GameState {
	t.Helper()
	state, err := e.ProcessAction(player, Action{Type: typ, Data: data})
	require.NoError(t, err)
	return state
}

func reject(t *testing.T, e *Engine, player int, typ ActionType, data any, want *rules.RuleError) {
	t.Helper()
	before := e.state.Checksum()
	_, err := e.ProcessAction(player, Action{Type: typ, Data: data})
	require.Error(t, err)
	require.ErrorIs(t, err, want)
	require.Equal(t, before, e.state.Checksum(), "rejected action must not change the game")
}

// advanceTo ends phases as the current player until phase is reached.
func advanceTo(t *testing.T, e *Engine, phase rules.Phase) {
	t.Helper()
	for i := 0; e.state.Phase != phase; i++ {
		require.Less(t, i, 10, "phase %s not reached", phase)
		act(t, e, e.state.CurrentPlayer, ActionEndPhase, nil)
	}
}

// convert rewrites a card a player already holds into def, keeping the
// card count intact.
func convert(t *testing.T, e *Engine, player int, zone ZoneKind, index int, def *CardDefinition) *Card {
	t.Helper()
	pile := *e.state.Player(player).Zone(zone)
	require.Less(t, index, len(pile))
	c := pile[index]
	c.Def = def
	return c
}

// fieldFamiliar moves a hand card onto the field as a ready def.
func fieldFamiliar(t *testing.T, e *Engine, player int, def *CardDefinition) *Card {
	t.Helper()
	pl := e.state.Player(player)
	c := convert(t, e, player, ZoneHand, 0, def)
	_, err := pl.move(c.ID, ZoneHand, ZoneField)
	require.NoError(t, err)
	return c
}

// readyResources moves n hand cards into the resource row untapped.
func readyResources(t *testing.T, e *Engine, player, n int) []string {
	t.Helper()
	pl := e.state.Player(player)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := pl.Hand[len(pl.Hand)-1]
		_, err := pl.move(c.ID, ZoneHand, ZoneResourceRow)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	return ids
}

func requireIntegrity(t *testing.T, e *Engine) {
	t.Helper()
	require.NoError(t, e.state.VerifyIntegrity(e.TotalCards()))
}

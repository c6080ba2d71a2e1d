package game

import (
	"fmt"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// Player is one seat's zones and per-turn flags.
type Player struct {
	ID                     int
	Name                   string
	Flag                   string
	Deck                   Pile
	Hand                   Pile
	LifeCards              Pile
	Field                  Pile
	ResourceRow            Pile
	Graveyard              Pile
	Removed                Pile
	ResourcePlacedThisTurn bool
}

// Clone deep-copies the player and every card it holds.
func (pl *Player) Clone() *Player {
	return &Player{
		ID:                     pl.ID,
		Name:                   pl.Name,
		Flag:                   pl.Flag,
		Deck:                   pl.Deck.Clone(),
		Hand:                   pl.Hand.Clone(),
		LifeCards:              pl.LifeCards.Clone(),
		Field:                  pl.Field.Clone(),
		ResourceRow:            pl.ResourceRow.Clone(),
		Graveyard:              pl.Graveyard.Clone(),
		Removed:                pl.Removed.Clone(),
		ResourcePlacedThisTurn: pl.ResourcePlacedThisTurn,
	}
}

// CardCount returns how many cards the player holds across all zones.
func (pl *Player) CardCount() int {
	n := 0
	for _, kind := range playerZones {
		n += pl.Zone(kind).Len()
	}
	return n
}

// GameState is the complete state of one game. The engine owns the live
// value; everything handed to callers is a Clone.
type GameState struct {
	rules.TurnState
	Players [2]*Player
	Stack   *rules.Stack[StackItem]
	Log     *rules.GameLog
	Winner  *int
}

func newGameState(logCapacity int) *GameState {
	return &GameState{
		TurnState: rules.NewTurnState(),
		Stack:     rules.NewStack[StackItem](),
		Log:       rules.NewGameLog(logCapacity),
	}
}

// Player returns the player in seat id.
func (s *GameState) Player(id int) *Player {
	return s.Players[id]
}

// IsOver reports whether a winner has been decided.
func (s *GameState) IsOver() bool {
	return s.Winner != nil
}

// Clone returns a deep copy sharing nothing mutable with s.
func (s *GameState) Clone() *GameState {
	cpy := &GameState{
		TurnState: s.TurnState.Clone(),
		Log:       s.Log.Clone(),
		Stack:     rules.NewStack[StackItem](),
	}
	for i, pl := range s.Players {
		if pl != nil {
			cpy.Players[i] = pl.Clone()
		}
	}
	for _, item := range s.Stack.List() {
		cloned := cloneStackItem(item)
		// An ability refers to a card that is still in a zone; point it at
		// that zone's copy.
		if ab, ok := cloned.(*AbilityItem); ok {
			if c, _, found := cpy.FindCard(ab.Card.ID); found {
				ab.Card = c
			}
		}
		cpy.Stack.Push(cloned)
	}
	if s.Winner != nil {
		w := *s.Winner
		cpy.Winner = &w
	}
	return cpy
}

// FindCard locates a card anywhere in the game, including on the stack.
func (s *GameState) FindCard(id string) (*Card, ZoneKind, bool) {
	for _, pl := range s.Players {
		if pl == nil {
			continue
		}
		if kind, c, ok := pl.Locate(id); ok {
			return c, kind, true
		}
	}
	for _, item := range s.Stack.List() {
		if c := item.SourceCard(); c != nil && c.ID == id && item.HoldsCard() {
			return c, ZoneStack, true
		}
	}
	return nil, 0, false
}

// CardCount returns the number of cards in the game, counting cards held
// by stack items.
func (s *GameState) CardCount() int {
	n := 0
	for _, pl := range s.Players {
		if pl != nil {
			n += pl.CardCount()
		}
	}
	for _, item := range s.Stack.List() {
		if item.HoldsCard() {
			n++
		}
	}
	return n
}

// VerifyIntegrity checks that the game holds exactly expected cards and
// that no card id appears in two places.
func (s *GameState) VerifyIntegrity(expected int) error {
	seen := make(map[string]string, expected)
	record := func(id, where string) error {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("card %s is in both %s and %s", id, prev, where)
		}
		seen[id] = where
		return nil
	}
	for _, pl := range s.Players {
		if pl == nil {
			continue
		}
		for _, kind := range playerZones {
			for _, c := range *pl.Zone(kind) {
				if err := record(c.ID, fmt.Sprintf("player %d %s", pl.ID, kind)); err != nil {
					return err
				}
			}
		}
	}
	for _, item := range s.Stack.List() {
		if !item.HoldsCard() {
			continue
		}
		if err := record(item.SourceCard().ID, "stack"); err != nil {
			return err
		}
	}
	if len(seen) != expected {
		return fmt.Errorf("expected %d cards in play, found %d", expected, len(seen))
	}
	return nil
}

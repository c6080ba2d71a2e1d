package game

import (
	"encoding/gob"
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// StackItem is a pending spell, ability or burst. The set of
// implementations is closed: *SpellItem, *AbilityItem and *BurstItem.
type StackItem interface {
	Kind() rules.StackItemKind
	StackID() string
	ControllerID() int
	// SourceCard is the card the item came from.
	SourceCard() *Card
	// HoldsCard reports whether the item physically holds SourceCard
	// (spells and bursts) rather than referring to it in place.
	HoldsCard() bool
	isStackItem()
}

// SpellItem is a spell cast from hand. It holds the card until resolution,
// after which the card goes to the bottom of its owner's deck.
type SpellItem struct {
	ID         string
	Card       *Card
	Controller int
	Targets    []string
}

// AbilityItem is an activated ability; its card stays where it is.
type AbilityItem struct {
	ID         string
	Card       *Card
	Ability    Ability
	Controller int
	Targets    []string
}

// BurstItem is a life-card played for free after being revealed by damage.
// It holds the card until resolution, then the card goes to its owner's
// graveyard.
type BurstItem struct {
	ID         string
	Card       *Card
	Controller int
}

func (s *SpellItem) Kind() rules.StackItemKind { return rules.StackItemKindSpell }
func (s *SpellItem) StackID() string           { return s.ID }
func (s *SpellItem) ControllerID() int         { return s.Controller }
func (s *SpellItem) SourceCard() *Card         { return s.Card }
func (s *SpellItem) HoldsCard() bool           { return true }
func (s *SpellItem) isStackItem()              {}

func (a *AbilityItem) Kind() rules.StackItemKind { return rules.StackItemKindAbility }
func (a *AbilityItem) StackID() string           { return a.ID }
func (a *AbilityItem) ControllerID() int         { return a.Controller }
func (a *AbilityItem) SourceCard() *Card         { return a.Card }
func (a *AbilityItem) HoldsCard() bool           { return false }
func (a *AbilityItem) isStackItem()              {}

func (b *BurstItem) Kind() rules.StackItemKind { return rules.StackItemKindBurst }
func (b *BurstItem) StackID() string           { return b.ID }
func (b *BurstItem) ControllerID() int         { return b.Controller }
func (b *BurstItem) SourceCard() *Card         { return b.Card }
func (b *BurstItem) HoldsCard() bool           { return true }
func (b *BurstItem) isStackItem()              {}

func init() {
	gob.Register(&SpellItem{})
	gob.Register(&AbilityItem{})
	gob.Register(&BurstItem{})
}

func cloneStackItem(item StackItem) StackItem {
	switch it := item.(type) {
	case *SpellItem:
		return &SpellItem{ID: it.ID, Card: it.Card.Clone(), Controller: it.Controller, Targets: cloneStrings(it.Targets)}
	case *AbilityItem:
		return &AbilityItem{ID: it.ID, Card: it.Card.Clone(), Ability: it.Ability, Controller: it.Controller, Targets: cloneStrings(it.Targets)}
	case *BurstItem:
		return &BurstItem{ID: it.ID, Card: it.Card.Clone(), Controller: it.Controller}
	default:
		panic(fmt.Sprintf("game: unknown stack item %T", item))
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// pushAndResolve puts an item on the stack and resolves down to the height
// the stack had before the push.
func (e *Engine) pushAndResolve(item StackItem) {
	floor := e.state.Stack.Len()
	e.state.Stack.Push(item)
	e.resolveStack(floor)
}

// resolveStack pops and resolves items until only floor remain. Nested
// calls (from effects that deal damage and reveal a burst) resolve just the
// items they pushed; an item beyond the nesting limit is put back for the
// enclosing loop.
func (e *Engine) resolveStack(floor int) {
	s := e.state
	for s.Stack.Len() > floor {
		item, err := s.Stack.Pop()
		if err != nil {
			return
		}

		if s.IsOver() {
			// The game ended mid-resolution; remaining items are discarded
			// without effect but their cards still move on.
			e.settleStackItem(item)
			continue
		}

		if err := e.resolution.Begin(item.StackID()); err != nil {
			e.logger.Warn("deferring stack item",
				zap.String("item_id", item.StackID()),
				zap.Int("depth", e.resolution.Depth()),
				zap.Error(err),
			)
			s.Stack.Push(item)
			return
		}

		e.logger.Debug("resolving stack item",
			zap.String("item_id", item.StackID()),
			zap.String("kind", string(item.Kind())),
			zap.Int("controller", item.ControllerID()),
			zap.String("card", item.SourceCard().Name()),
			zap.Int("remaining", s.Stack.Len()),
		)

		if err := e.resolver.Resolve(&EffectContext{engine: e, item: item}, item); err != nil {
			e.logger.Warn("effect resolution failed",
				zap.String("item_id", item.StackID()),
				zap.Error(err),
			)
		}
		if err := e.resolution.End(item.StackID()); err != nil {
			e.logger.Error("resolution bookkeeping mismatch", zap.Error(err))
		}

		e.settleStackItem(item)
		e.addLog(rules.LogStack, fmt.Sprintf("%s %s resolved", item.SourceCard().Name(), item.Kind()))
		e.emit(rules.StackItemResolved{
			ItemID:     item.StackID(),
			Kind:       item.Kind(),
			Controller: item.ControllerID(),
			CardID:     item.SourceCard().ID,
		})
	}
}

// settleStackItem moves a resolved item's card to its destination.
func (e *Engine) settleStackItem(item StackItem) {
	switch it := item.(type) {
	case *SpellItem:
		it.Card.reset()
		e.state.Player(it.Card.Owner).Deck.Add(it.Card)
	case *AbilityItem:
		// The card never left its zone.
	case *BurstItem:
		it.Card.reset()
		e.state.Player(it.Card.Owner).Graveyard.Add(it.Card)
	default:
		panic(fmt.Sprintf("game: unknown stack item %T", item))
	}
}

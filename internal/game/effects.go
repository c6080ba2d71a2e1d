package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/counters"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// EffectResolver applies the card-specific effect of a resolving stack
// item. The engine settles the item's card afterwards regardless of the
// returned error.
//
// Resolve is called once per item, except for items still on the stack
// when a winner is declared: those are settled without calling Resolve.
type EffectResolver interface {
	Resolve(ctx *EffectContext, item StackItem) error
}

// ResolverFunc adapts a function to EffectResolver.
type ResolverFunc func(ctx *EffectContext, item StackItem) error

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx *EffectContext, item StackItem) error {
	return f(ctx, item)
}

// NoopResolver resolves every item without effect.
type NoopResolver struct{}

// Resolve does nothing.
func (NoopResolver) Resolve(*EffectContext, StackItem) error { return nil }

// EffectContext is the view of the game an EffectResolver acts through. It
// is only valid for the duration of a single Resolve call.
type EffectContext struct {
	engine *Engine
	item   StackItem
}

// Item returns the resolving stack item.
func (c *EffectContext) Item() StackItem {
	return c.item
}

// State returns a snapshot of the game.
func (c *EffectContext) State() *GameState {
	return c.engine.state.Clone()
}

// GameOver reports whether a winner has been declared.
func (c *EffectContext) GameOver() bool {
	return c.engine.state.IsOver()
}

// Logger returns the engine logger scoped to the resolving item.
func (c *EffectContext) Logger() *zap.Logger {
	return c.engine.logger.With(zap.String("item_id", c.item.StackID()))
}

// DealDamageToPlayer reveals amount life-cards of player. A revealed burst
// card resolves before this call returns.
func (c *EffectContext) DealDamageToPlayer(player, amount int) error {
	if err := c.checkPlayer(player); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("negative damage %d", amount)
	}
	c.engine.dealDamageToPlayer(player, amount)
	return nil
}

// DrawCards draws up to n cards for player and returns how many were drawn.
func (c *EffectContext) DrawCards(player, n int) (int, error) {
	if err := c.checkPlayer(player); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative draw %d", n)
	}
	return c.engine.drawCards(player, n), nil
}

// DestroyFamiliar moves a Familiar from the field to its owner's graveyard.
func (c *EffectContext) DestroyFamiliar(cardID string) error {
	e := c.engine
	for _, pl := range e.state.Players {
		if card, _ := pl.Field.Find(cardID); card != nil {
			e.destroyFamiliar(pl, card)
			return nil
		}
	}
	return rules.Reject(rules.ErrCardNotFound, "card %s is not on the field", cardID)
}

// AddCounters puts n counters of kind on a card on the field.
func (c *EffectContext) AddCounters(cardID string, kind counters.CounterType, n int) error {
	if n <= 0 {
		return fmt.Errorf("counter amount must be positive, got %d", n)
	}
	for _, pl := range c.engine.state.Players {
		if card, _ := pl.Field.Find(cardID); card != nil {
			card.Counters.Add(kind, n)
			c.engine.addLog(rules.LogAbility, fmt.Sprintf("%s gets %d %s counter(s)", card.Name(), n, kind))
			return nil
		}
	}
	return rules.Reject(rules.ErrCardNotFound, "card %s is not on the field", cardID)
}

// PushAbility puts a triggered ability of a card on the field onto the
// stack. It resolves after the current item, before control returns to the
// player.
func (c *EffectContext) PushAbility(cardID, abilityID string, controller int, targets []string) error {
	if err := c.checkPlayer(controller); err != nil {
		return err
	}
	e := c.engine
	card, zone, ok := e.state.FindCard(cardID)
	if !ok || zone != ZoneField {
		return rules.Reject(rules.ErrCardNotFound, "card %s is not on the field", cardID)
	}
	ability, ok := card.Def.Ability(abilityID)
	if !ok {
		return rules.Reject(rules.ErrAbilityNotFound, "%s has no ability %q", card.Name(), abilityID)
	}
	e.state.Stack.Push(&AbilityItem{
		ID:         e.newID(),
		Card:       card,
		Ability:    ability,
		Controller: controller,
		Targets:    cloneStrings(targets),
	})
	return nil
}

func (c *EffectContext) checkPlayer(player int) error {
	if player != 0 && player != 1 {
		return rules.Reject(rules.ErrInvalidPlayer, "player %d", player)
	}
	return nil
}

package game

import (
	"fmt"

	"github.com/thraizz/azoth-server-go/internal/game/counters"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// summonFamiliar pays for a Familiar in hand and puts it onto the field.
// Each resource paid beyond the cost becomes a strength counter.
func (e *Engine) summonFamiliar(player int, data SummonFamiliarData) error {
	s := e.state
	pl := s.Player(player)
	if player != s.CurrentPlayer {
		return rules.Reject(rules.ErrNotYourTurn, "Familiars are summoned on your own turn")
	}
	if !s.Phase.IsMain() {
		return rules.Reject(rules.ErrWrongPhase, "cannot summon during %s", s.Phase)
	}
	c, _ := pl.Hand.Find(data.CardID)
	if c == nil {
		return rules.Reject(rules.ErrCardNotInHand, "card %s", data.CardID)
	}
	if !c.IsFamiliar() {
		return rules.Reject(rules.ErrInvalidCardType, "%s is a %s, not a familiar", c.Name(), c.Def.Type)
	}
	plan, err := e.verifyPayment(pl, c, c.Def.Cost, data.Payment)
	if err != nil {
		return err
	}

	tapResources(pl, plan)
	if _, err := pl.move(c.ID, ZoneHand, ZoneField); err != nil {
		return err
	}
	c.Tapped = false
	c.FaceDown = false
	c.SummoningSickness = true
	if plan.Excess > 0 {
		c.Counters.Add(counters.Strength, plan.Excess)
	}
	s.ClearPasses()

	e.emit(rules.FamiliarSummoned{
		Player:           player,
		CardID:           c.ID,
		Name:             c.Name(),
		Paid:             cloneStrings(plan.Paid),
		StrengthCounters: plan.Excess,
	})
	e.addLog(rules.LogSummon, fmt.Sprintf("%s summons %s (%d/%d)", e.playerName(player), c.Name(), c.Power(), c.Toughness()))
	return nil
}

// castSpell pays for a spell in hand, puts it on the stack and resolves.
func (e *Engine) castSpell(player int, data CastSpellData) error {
	s := e.state
	pl := s.Player(player)
	if !s.Phase.IsMain() {
		return rules.Reject(rules.ErrWrongPhase, "cannot cast during %s", s.Phase)
	}
	c, _ := pl.Hand.Find(data.CardID)
	if c == nil {
		return rules.Reject(rules.ErrCardNotInHand, "card %s", data.CardID)
	}
	if c.Def.Type != CardTypeSpell {
		return rules.Reject(rules.ErrInvalidCardType, "%s is a %s, not a spell", c.Name(), c.Def.Type)
	}
	plan, err := e.verifyPayment(pl, c, c.Def.Cost, data.Payment)
	if err != nil {
		return err
	}

	tapResources(pl, plan)
	pl.Hand.Take(c.ID)
	s.ClearPasses()

	e.emit(rules.SpellCast{
		Player:  player,
		CardID:  c.ID,
		Name:    c.Name(),
		Paid:    cloneStrings(plan.Paid),
		Targets: cloneStrings(data.Targets),
	})
	e.addLog(rules.LogSpell, fmt.Sprintf("%s casts %s", e.playerName(player), c.Name()))
	e.pushAndResolve(&SpellItem{
		ID:         e.newID(),
		Card:       c,
		Controller: player,
		Targets:    cloneStrings(data.Targets),
	})
	return nil
}

// activateAbility pays for an activated ability of a card on the field and
// resolves it.
func (e *Engine) activateAbility(player int, data ActivateAbilityData) error {
	s := e.state
	pl := s.Player(player)
	if !s.Phase.IsMain() {
		return rules.Reject(rules.ErrWrongPhase, "cannot activate abilities during %s", s.Phase)
	}
	c, _ := pl.Field.Find(data.CardID)
	if c == nil {
		return rules.Reject(rules.ErrCardNotFound, "card %s is not on your field", data.CardID)
	}
	ability, ok := c.Def.Ability(data.AbilityID)
	if !ok || ability.Kind != AbilityActivated {
		return rules.Reject(rules.ErrAbilityNotFound, "%s has no activated ability %q", c.Name(), data.AbilityID)
	}
	plan, err := e.verifyPayment(pl, c, ability.Cost, data.Payment)
	if err != nil {
		return err
	}

	tapResources(pl, plan)
	s.ClearPasses()

	e.emit(rules.AbilityActivated{
		Player:    player,
		CardID:    c.ID,
		AbilityID: ability.ID,
		Targets:   cloneStrings(data.Targets),
	})
	e.addLog(rules.LogAbility, fmt.Sprintf("%s activates %s of %s", e.playerName(player), ability.Name, c.Name()))
	e.pushAndResolve(&AbilityItem{
		ID:         e.newID(),
		Card:       c,
		Ability:    ability,
		Controller: player,
		Targets:    cloneStrings(data.Targets),
	})
	return nil
}

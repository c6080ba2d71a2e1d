package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thraizz/azoth-server-go/internal/game/counters"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

func TestSummonFamiliar(t *testing.T) {
	e := startedEngine(t)
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 1)
	fox := convert(t, e, 0, ZoneHand, 0, vanillaDef).ID

	state := act(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: paid})
	pl := state.Player(0)
	c, _ := pl.Field.Find(fox)
	require.NotNil(t, c)
	assert.True(t, c.SummoningSickness)
	assert.False(t, c.Tapped)
	assert.Zero(t, c.Counters.Count(counters.Strength))
	assert.True(t, pl.ResourceRow[0].Tapped)
	assert.False(t, pl.Hand.Contains(fox))
	requireIntegrity(t, e)
}

func TestSummonOverpaymentGrantsStrengthCounters(t *testing.T) {
	e := startedEngine(t)
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 3)
	fox := convert(t, e, 0, ZoneHand, 0, vanillaDef).ID

	log := &eventLog{}
	e.Events().Subscribe(log.listen)

	state := act(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: paid})
	c, _ := state.Player(0).Field.Find(fox)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Counters.Count(counters.Strength))
	assert.Equal(t, 5, c.Power())
	assert.Equal(t, 5, c.Toughness())

	require.Len(t, log.events, 1)
	summoned := log.events[0].Payload.(rules.FamiliarSummoned)
	assert.Equal(t, 2, summoned.StrengthCounters)
	assert.Equal(t, paid, summoned.Paid)
}

func TestSummonRejections(t *testing.T) {
	e := startedEngine(t)
	paid := readyResources(t, e, 0, 2)
	fox := convert(t, e, 0, ZoneHand, 0, vanillaDef).ID
	wall := convert(t, e, 0, ZoneHand, 1, wallDef).ID
	bolt := convert(t, e, 0, ZoneHand, 2, boltDef).ID

	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: paid}, rules.ErrWrongPhase)

	advanceTo(t, e, rules.PhaseMain)
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: "missing", Payment: paid}, rules.ErrCardNotInHand)
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: bolt, Payment: paid}, rules.ErrInvalidCardType)
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: wall, Payment: paid[:1]}, rules.ErrInsufficientPayment)
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: []string{"nope"}}, rules.ErrResourceNotFound)
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: wall, Payment: []string{paid[0], paid[0]}}, rules.ErrResourceAlreadyTapped)

	c, _ := e.state.Player(0).ResourceRow.Find(paid[0])
	c.Tapped = true
	reject(t, e, 0, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: paid[:1]}, rules.ErrResourceAlreadyTapped)
}

func TestSummonOnlyOnOwnTurn(t *testing.T) {
	e := startedEngine(t)
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 1, 1)
	fox := convert(t, e, 1, ZoneHand, 0, vanillaDef).ID

	act(t, e, 0, ActionPassPriority, nil)
	reject(t, e, 1, ActionSummonFamiliar, SummonFamiliarData{CardID: fox, Payment: paid}, rules.ErrNotYourTurn)
}

func TestCastSpellResolvesToDeckBottom(t *testing.T) {
	var resolved []StackItem
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		resolved = append(resolved, item)
		assert.Equal(t, 0, ctx.State().Stack.Len(), "the resolving item is off the stack")
		return nil
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	log := &eventLog{}
	e.Events().Subscribe(log.listen)

	state := act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid, Targets: []string{"p1"}})
	require.Len(t, resolved, 1)
	spell, ok := resolved[0].(*SpellItem)
	require.True(t, ok)
	assert.Equal(t, []string{"p1"}, spell.Targets)
	assert.Equal(t, 0, spell.Controller)

	pl := state.Player(0)
	assert.Equal(t, bolt, pl.Deck[pl.Deck.Len()-1].ID)
	assert.True(t, state.Stack.IsEmpty())
	assert.Equal(t, []rules.EventType{rules.EventSpellCast, rules.EventStackItemResolved}, log.types())
	requireIntegrity(t, e)
}

func TestCastSpellRejections(t *testing.T) {
	e := startedEngine(t)
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID
	fox := convert(t, e, 0, ZoneHand, 1, vanillaDef).ID

	reject(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid}, rules.ErrWrongPhase)
	advanceTo(t, e, rules.PhaseMain)
	reject(t, e, 0, ActionCastSpell, CastSpellData{CardID: fox, Payment: paid}, rules.ErrInvalidCardType)
	reject(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid[:1]}, rules.ErrInsufficientPayment)
}

func TestElementMismatchIsOnlyAWarning(t *testing.T) {
	e := startedEngine(t)
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	for _, id := range paid {
		c, _ := e.state.Player(0).ResourceRow.Find(id)
		c.Def = wallDef
	}
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})
}

func TestResolverErrorDoesNotStopResolution(t *testing.T) {
	resolver := ResolverFunc(func(*EffectContext, StackItem) error {
		return errors.New("fizzle")
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	state := act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})
	assert.True(t, state.Stack.IsEmpty())
	assert.True(t, state.Player(0).Deck.Contains(bolt))
}

func TestActivateAbility(t *testing.T) {
	var resolved []*AbilityItem
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		if ab, ok := item.(*AbilityItem); ok {
			resolved = append(resolved, ab)
			return ctx.AddCounters(ab.Card.ID, counters.Charge, 1)
		}
		return nil
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 1)
	totem := fieldFamiliar(t, e, 0, totemDef).ID

	state := act(t, e, 0, ActionActivateAbility, ActivateAbilityData{CardID: totem, AbilityID: "gust", Payment: paid})
	require.Len(t, resolved, 1)
	assert.Equal(t, "gust", resolved[0].Ability.ID)

	c, _ := state.Player(0).Field.Find(totem)
	require.NotNil(t, c, "ability source stays on the field")
	assert.Equal(t, 1, c.Counters.Count(counters.Charge))
	assert.True(t, state.Player(0).ResourceRow[0].Tapped)
	requireIntegrity(t, e)
}

func TestActivateAbilityRejections(t *testing.T) {
	e := startedEngine(t)
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 1)
	totem := fieldFamiliar(t, e, 0, totemDef).ID
	fox := fieldFamiliar(t, e, 0, vanillaDef).ID
	inHand := convert(t, e, 0, ZoneHand, 0, totemDef).ID

	reject(t, e, 0, ActionActivateAbility, ActivateAbilityData{CardID: inHand, AbilityID: "gust", Payment: paid}, rules.ErrCardNotFound)
	reject(t, e, 0, ActionActivateAbility, ActivateAbilityData{CardID: fox, AbilityID: "gust", Payment: paid}, rules.ErrAbilityNotFound)
	reject(t, e, 0, ActionActivateAbility, ActivateAbilityData{CardID: totem, AbilityID: "gust"}, rules.ErrInsufficientPayment)
}

func TestEffectsCanQueueFurtherAbilities(t *testing.T) {
	var order []string
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		order = append(order, string(item.Kind()))
		if _, ok := item.(*SpellItem); ok {
			for _, c := range ctx.State().Player(0).Field {
				if err := ctx.PushAbility(c.ID, "gust", 0, nil); err != nil {
					return err
				}
			}
		}
		return nil
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	fieldFamiliar(t, e, 0, totemDef)
	fieldFamiliar(t, e, 0, totemDef)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	state := act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})
	assert.Equal(t, []string{"spell", "ability", "ability"}, order)
	assert.True(t, state.Stack.IsEmpty())
	requireIntegrity(t, e)
}

func TestEffectContextValidation(t *testing.T) {
	var errs []error
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		errs = append(errs,
			ctx.DealDamageToPlayer(3, 1),
			ctx.DestroyFamiliar("missing"),
			ctx.AddCounters("missing", counters.Strength, 1),
			ctx.PushAbility("missing", "gust", 0, nil),
		)
		_, err := ctx.DrawCards(0, -1)
		errs = append(errs, err)
		return nil
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})
	require.Len(t, errs, 5)
	assert.ErrorIs(t, errs[0], rules.ErrInvalidPlayer)
	assert.ErrorIs(t, errs[1], rules.ErrCardNotFound)
	assert.ErrorIs(t, errs[2], rules.ErrCardNotFound)
	assert.ErrorIs(t, errs[3], rules.ErrCardNotFound)
	assert.Error(t, errs[4])
}

func TestDestroyFamiliarFromEffect(t *testing.T) {
	var target string
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		return ctx.DestroyFamiliar(target)
	})
	e := startedEngine(t, WithResolver(resolver))
	advanceTo(t, e, rules.PhaseMain)
	target = fieldFamiliar(t, e, 1, vanillaDef).ID
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	state := act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})
	assert.True(t, state.Player(1).Graveyard.Contains(target))
	requireIntegrity(t, e)
}

func TestItemsLeftAfterGameOverSkipTheResolver(t *testing.T) {
	var (
		order []rules.StackItemKind
		totem string
	)
	resolver := ResolverFunc(func(ctx *EffectContext, item StackItem) error {
		order = append(order, item.Kind())
		if item.Kind() != rules.StackItemKindSpell {
			return nil
		}
		if err := ctx.PushAbility(totem, "gust", 0, nil); err != nil {
			return err
		}
		return ctx.DealDamageToPlayer(1, 5)
	})
	e := startedEngine(t, WithResolver(resolver))
	totem = fieldFamiliar(t, e, 0, totemDef).ID
	advanceTo(t, e, rules.PhaseMain)
	paid := readyResources(t, e, 0, 2)
	bolt := convert(t, e, 0, ZoneHand, 0, boltDef).ID

	state := act(t, e, 0, ActionCastSpell, CastSpellData{CardID: bolt, Payment: paid})

	assert.Equal(t, []rules.StackItemKind{rules.StackItemKindSpell}, order)
	require.NotNil(t, state.Winner)
	assert.Equal(t, 0, *state.Winner)
	assert.True(t, state.Stack.IsEmpty())
	assert.True(t, state.Player(0).Field.Contains(totem))
	pl := state.Player(0)
	assert.Equal(t, bolt, pl.Deck[pl.Deck.Len()-1].ID)
	requireIntegrity(t, e)
}

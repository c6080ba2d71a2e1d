package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/game/counters"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// KeywordResolver interprets effect text made of ";"-separated clauses:
//
//	damage N    reveal N life-cards of the controller's opponent
//	draw N      the controller draws N cards
//	strength N  N strength counters on the source (or first target)
//	weakness N  N weakness counters on the first target
//	destroy     destroy the first target
//
// Empty effect text does nothing.
type KeywordResolver struct{}

var _ game.EffectResolver = KeywordResolver{}

// Resolve applies every clause of the item's effect text in order and stops
// at the first failing clause.
func (KeywordResolver) Resolve(ctx *game.EffectContext, item game.StackItem) error {
	text, targets := effectOf(item)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	controller := item.ControllerID()

	for _, clause := range strings.Split(text, ";") {
		fields := strings.Fields(clause)
		if len(fields) == 0 {
			continue
		}
		if ctx.GameOver() {
			return nil
		}
		if err := apply(ctx, item, controller, targets, fields); err != nil {
			return fmt.Errorf("effect %q: %w", strings.TrimSpace(clause), err)
		}
	}
	return nil
}

func apply(ctx *game.EffectContext, item game.StackItem, controller int, targets, fields []string) error {
	keyword := strings.ToLower(fields[0])
	switch keyword {
	case "destroy":
		target, err := firstTarget(targets)
		if err != nil {
			return err
		}
		return ctx.DestroyFamiliar(target)
	case "damage", "draw", "strength", "weakness":
	default:
		return fmt.Errorf("unknown keyword %q", keyword)
	}

	if len(fields) != 2 {
		return fmt.Errorf("%s takes one amount", keyword)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return fmt.Errorf("bad amount %q", fields[1])
	}

	switch keyword {
	case "damage":
		return ctx.DealDamageToPlayer(rules.Opponent(controller), n)
	case "draw":
		drawn, err := ctx.DrawCards(controller, n)
		if err != nil {
			return err
		}
		if drawn < n {
			ctx.Logger().Debug("deck ran out during draw", zap.Int("wanted", n), zap.Int("drawn", drawn))
		}
		return nil
	case "strength":
		target := ""
		if src := item.SourceCard(); src != nil && !item.HoldsCard() {
			target = src.ID
		}
		if len(targets) > 0 {
			target = targets[0]
		}
		if target == "" {
			return errors.New("strength needs a Familiar")
		}
		if n == 0 {
			return nil
		}
		return ctx.AddCounters(target, counters.Strength, n)
	default:
		target, err := firstTarget(targets)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return ctx.AddCounters(target, counters.Weakness, n)
	}
}

func effectOf(item game.StackItem) (string, []string) {
	switch it := item.(type) {
	case *game.SpellItem:
		return it.Card.Def.Effect, it.Targets
	case *game.AbilityItem:
		return it.Ability.Effect, it.Targets
	case *game.BurstItem:
		if ab, ok := it.Card.Def.Burst(); ok && ab.Effect != "" {
			return ab.Effect, nil
		}
		return it.Card.Def.Effect, nil
	default:
		return "", nil
	}
}

func firstTarget(targets []string) (string, error) {
	if len(targets) == 0 || targets[0] == "" {
		return "", errors.New("no target")
	}
	return targets[0], nil
}

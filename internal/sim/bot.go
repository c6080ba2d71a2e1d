// Package sim plays both seats of a game with a greedy bot.
package sim

import (
	"cmp"
	"slices"
	"strings"

	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/game/azoth"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// Bot picks the next action for the player holding priority. It is
// deterministic: the same state always yields the same action.
type Bot struct {
	// ChumpAt is the life-card count at or below which the bot blocks even
	// when its blocker will not survive.
	ChumpAt int
}

// NewBot returns a bot with default thresholds.
func NewBot() *Bot {
	return &Bot{ChumpAt: 1}
}

// Choose returns the action player should take in state.
func (b *Bot) Choose(state *game.GameState, player int) game.Action {
	if state.IsOver() || state.ActivePlayer != player {
		return pass()
	}
	if player != state.CurrentPlayer {
		if state.Phase == rules.PhaseCombatBlocks {
			return b.blocks(state, player)
		}
		return pass()
	}

	pl := state.Player(player)
	switch state.Phase {
	case rules.PhaseStart:
		if a, ok := placeResource(pl); ok {
			return a
		}
	case rules.PhaseMain:
		if a, ok := placeResource(pl); ok {
			return a
		}
		if a, ok := summon(pl); ok {
			return a
		}
		if a, ok := castSpell(state, player); ok {
			return a
		}
		if a, ok := activate(state, player); ok {
			return a
		}
	case rules.PhaseCombat:
		if a, ok := attack(pl); ok {
			return a
		}
	case rules.PhasePostCombat:
		return game.Action{Type: game.ActionEndTurn}
	}
	return game.Action{Type: game.ActionEndPhase}
}

func pass() game.Action {
	return game.Action{Type: game.ActionPassPriority}
}

// placeResource turns the most expensive card in hand into a resource,
// keeping at least one card.
func placeResource(pl *game.Player) (game.Action, bool) {
	if pl.ResourcePlacedThisTurn || pl.Hand.Len() < 2 {
		return game.Action{}, false
	}
	best := slices.MaxFunc(pl.Hand, func(a, b *game.Card) int {
		return cmp.Compare(a.Def.Cost.Total(), b.Def.Cost.Total())
	})
	return game.Action{Type: game.ActionPlaceResource, Data: &game.PlaceResourceData{CardID: best.ID}}, true
}

// summon plays the strongest Familiar the untapped resources can pay for.
func summon(pl *game.Player) (game.Action, bool) {
	var best *game.Card
	for _, c := range pl.Hand {
		if !c.IsFamiliar() || c.Def.Cost.Total() > untapped(pl) {
			continue
		}
		if best == nil || c.Def.Power+c.Def.Toughness > best.Def.Power+best.Def.Toughness {
			best = c
		}
	}
	if best == nil {
		return game.Action{}, false
	}
	return game.Action{Type: game.ActionSummonFamiliar, Data: &game.SummonFamiliarData{
		CardID:  best.ID,
		Payment: payFor(pl, best.Def.Cost),
	}}, true
}

func castSpell(state *game.GameState, player int) (game.Action, bool) {
	pl := state.Player(player)
	for _, c := range pl.Hand {
		if c.Def.Type != game.CardTypeSpell || c.Def.Cost.Total() > untapped(pl) {
			continue
		}
		targets, ok := targetsFor(state, player, c.Def.Effect)
		if !ok {
			continue
		}
		return game.Action{Type: game.ActionCastSpell, Data: &game.CastSpellData{
			CardID:  c.ID,
			Payment: payFor(pl, c.Def.Cost),
			Targets: targets,
		}}, true
	}
	return game.Action{}, false
}

// activate uses the first affordable ability with a non-zero cost; free
// abilities are skipped so the bot cannot loop on them.
func activate(state *game.GameState, player int) (game.Action, bool) {
	pl := state.Player(player)
	for _, c := range pl.Field {
		for _, ab := range c.Def.Abilities {
			if ab.Kind != game.AbilityActivated || ab.Cost.Total() == 0 || ab.Cost.Total() > untapped(pl) {
				continue
			}
			targets, ok := targetsFor(state, player, ab.Effect)
			if !ok {
				continue
			}
			return game.Action{Type: game.ActionActivateAbility, Data: &game.ActivateAbilityData{
				CardID:    c.ID,
				AbilityID: ab.ID,
				Payment:   payFor(pl, ab.Cost),
				Targets:   targets,
			}}, true
		}
	}
	return game.Action{}, false
}

func attack(pl *game.Player) (game.Action, bool) {
	var ids []string
	for _, c := range pl.Field {
		if c.IsFamiliar() && !c.Tapped && !c.SummoningSickness && c.Power() > 0 {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return game.Action{}, false
	}
	return game.Action{Type: game.ActionDeclareAttack, Data: &game.DeclareAttackData{Attackers: ids}}, true
}

// blocks assigns each attacker, strongest first, the weakest blocker that
// survives it. When life-cards run low any blocker will do.
func (b *Bot) blocks(state *game.GameState, player int) game.Action {
	defender := state.Player(player)
	attacker := state.Player(rules.Opponent(player))

	var attackers []*game.Card
	for _, c := range attacker.Field {
		if c.Attacking {
			attackers = append(attackers, c)
		}
	}
	slices.SortStableFunc(attackers, func(x, y *game.Card) int { return cmp.Compare(y.Power(), x.Power()) })

	var free []*game.Card
	for _, c := range defender.Field {
		if c.IsFamiliar() && !c.Tapped && c.Blocking == "" {
			free = append(free, c)
		}
	}
	slices.SortStableFunc(free, func(x, y *game.Card) int { return cmp.Compare(x.Toughness(), y.Toughness()) })

	desperate := defender.LifeCards.Len() <= b.ChumpAt
	pairs := []rules.BlockPair{}
	for _, a := range attackers {
		pick := -1
		for i, c := range free {
			if c.Toughness() > a.Power() {
				pick = i
				break
			}
		}
		if pick < 0 && desperate && len(free) > 0 {
			pick = 0
		}
		if pick < 0 {
			continue
		}
		pairs = append(pairs, rules.BlockPair{BlockerID: free[pick].ID, AttackerID: a.ID})
		free = slices.Delete(free, pick, pick+1)
	}
	return game.Action{Type: game.ActionDeclareBlock, Data: &game.DeclareBlockData{Blocks: pairs}}
}

// targetsFor picks targets for effect text: an enemy Familiar for harmful
// clauses, an own Familiar for strength. ok is false when a needed target
// does not exist.
func targetsFor(state *game.GameState, player int, effect string) ([]string, bool) {
	effect = strings.ToLower(effect)
	switch {
	case strings.Contains(effect, "destroy"), strings.Contains(effect, "weakness"):
		c := strongest(state.Player(rules.Opponent(player)).Field)
		if c == nil {
			return nil, false
		}
		return []string{c.ID}, true
	case strings.Contains(effect, "strength"):
		c := strongest(state.Player(player).Field)
		if c == nil {
			return nil, false
		}
		return []string{c.ID}, true
	default:
		return nil, true
	}
}

func strongest(field game.Pile) *game.Card {
	var best *game.Card
	for _, c := range field {
		if c.IsFamiliar() && (best == nil || c.Power() > best.Power()) {
			best = c
		}
	}
	return best
}

func untapped(pl *game.Player) int {
	n := 0
	for _, c := range pl.ResourceRow {
		if !c.Tapped {
			n++
		}
	}
	return n
}

// payFor selects untapped resources for cost, using resources carrying a
// required element first.
func payFor(pl *game.Player, cost azoth.Cost) []string {
	var free []*game.Card
	for _, c := range pl.ResourceRow {
		if !c.Tapped {
			free = append(free, c)
		}
	}

	used := make(map[string]bool, cost.Total())
	paid := make([]string, 0, cost.Total())
	for _, el := range cost.Elements {
		for _, c := range free {
			if !used[c.ID] && slices.Contains(c.Elements(), el) {
				used[c.ID] = true
				paid = append(paid, c.ID)
				break
			}
		}
	}
	for _, c := range free {
		if len(paid) >= cost.Total() {
			break
		}
		if !used[c.ID] {
			used[c.ID] = true
			paid = append(paid, c.ID)
		}
	}
	return paid
}

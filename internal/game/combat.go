package game

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// declareAttack taps the chosen Familiars, marks them attacking and hands
// priority to the defender in combat-blocks.
func (e *Engine) declareAttack(player int, attackerIDs []string) error {
	s := e.state
	if player != s.CurrentPlayer {
		return rules.Reject(rules.ErrNotYourTurn, "only %s may attack", e.playerName(s.CurrentPlayer))
	}
	if s.Phase != rules.PhaseCombat {
		return rules.Reject(rules.ErrWrongPhase, "attacks are declared in combat, not %s", s.Phase)
	}
	if len(attackerIDs) == 0 {
		return rules.Reject(rules.ErrNoAttackers, "declare at least one attacker or end the phase")
	}

	pl := s.Player(player)
	attackers := make([]*Card, 0, len(attackerIDs))
	seen := make(map[string]bool, len(attackerIDs))
	for _, id := range attackerIDs {
		if seen[id] {
			return rules.Reject(rules.ErrInvalidActionData, "attacker %s listed twice", id)
		}
		seen[id] = true

		c, _ := pl.Field.Find(id)
		if c == nil {
			return rules.Reject(rules.ErrCardNotFound, "attacker %s is not on your field", id)
		}
		if !c.IsFamiliar() {
			return rules.Reject(rules.ErrInvalidCardType, "%s cannot attack", c.Name())
		}
		if c.Tapped {
			return rules.Reject(rules.ErrAttackerTapped, "%s is tapped", c.Name())
		}
		if c.SummoningSickness {
			return rules.Reject(rules.ErrSummoningSickness, "%s entered play this turn", c.Name())
		}
		attackers = append(attackers, c)
	}

	names := make([]string, len(attackers))
	for i, c := range attackers {
		c.Tapped = true
		c.Attacking = true
		names[i] = c.Name()
	}
	s.AttackDeclared = true
	defender := rules.Opponent(player)

	e.emit(rules.AttackDeclared{Player: player, Defender: defender, Attackers: cloneStrings(attackerIDs)})
	e.addLog(rules.LogCombat, fmt.Sprintf("%s attacks with %s", e.playerName(player), strings.Join(names, ", ")))
	e.logger.Debug("attack declared", zap.Int("player", player), zap.Strings("attackers", attackerIDs))

	e.advancePhase()
	s.GivePriority(defender)
	return nil
}

// declareBlock assigns the defender's blockers and resolves combat damage
// immediately. An empty block list lets every attacker through.
func (e *Engine) declareBlock(player int, blocks []rules.BlockPair) error {
	s := e.state
	if s.Phase != rules.PhaseCombatBlocks {
		return rules.Reject(rules.ErrWrongPhase, "blocks are declared in combat-blocks, not %s", s.Phase)
	}
	if player == s.CurrentPlayer {
		return rules.Reject(rules.ErrNotDefendingPlayer, "%s is the attacking player", e.playerName(player))
	}

	defender := s.Player(player)
	attacker := s.Player(s.CurrentPlayer)
	type pairing struct{ blocker, attacker *Card }
	pairs := make([]pairing, 0, len(blocks))
	usedBlockers := make(map[string]bool, len(blocks))
	blockedAttackers := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		blocker, _ := defender.Field.Find(b.BlockerID)
		if blocker == nil {
			return rules.Reject(rules.ErrCardNotFound, "blocker %s is not on your field", b.BlockerID)
		}
		if !blocker.IsFamiliar() {
			return rules.Reject(rules.ErrInvalidCardType, "%s cannot block", blocker.Name())
		}
		if blocker.Tapped {
			return rules.Reject(rules.ErrBlockerTapped, "%s is tapped", blocker.Name())
		}
		if blocker.Blocking != "" || usedBlockers[blocker.ID] {
			return rules.Reject(rules.ErrBlockerAlreadyAssigned, "%s is already blocking", blocker.Name())
		}

		target, _ := attacker.Field.Find(b.AttackerID)
		if target == nil || !target.Attacking {
			return rules.Reject(rules.ErrNotAttacking, "card %s is not attacking", b.AttackerID)
		}
		if target.BlockedBy != "" || blockedAttackers[target.ID] {
			return rules.Reject(rules.ErrAttackerAlreadyBlocked, "%s is already blocked", target.Name())
		}

		usedBlockers[blocker.ID] = true
		blockedAttackers[target.ID] = true
		pairs = append(pairs, pairing{blocker: blocker, attacker: target})
	}

	for _, p := range pairs {
		p.blocker.Blocking = p.attacker.ID
		p.attacker.BlockedBy = p.blocker.ID
		e.addLog(rules.LogCombat, fmt.Sprintf("%s blocks %s", p.blocker.Name(), p.attacker.Name()))
	}
	if len(pairs) == 0 {
		e.addLog(rules.LogCombat, fmt.Sprintf("%s does not block", e.playerName(player)))
	}
	e.emit(rules.BlockDeclared{Player: player, Blocks: append([]rules.BlockPair(nil), blocks...)})

	e.advancePhase()
	return nil
}

// resolveCombat deals simultaneous combat damage, destroys lethally damaged
// Familiars, clears combat flags and moves on to post-combat.
func (e *Engine) resolveCombat() {
	s := e.state
	attackingPlayer := s.CurrentPlayer
	defendingPlayer := rules.Opponent(attackingPlayer)
	attacker := s.Player(attackingPlayer)
	defender := s.Player(defendingPlayer)

	var toPlayer int
	var blocked []*Card
	for _, c := range attacker.Field {
		if !c.Attacking {
			continue
		}
		if c.BlockedBy == "" {
			toPlayer += e.playerDamage(c)
			continue
		}
		blocker, _ := defender.Field.Find(c.BlockedBy)
		if blocker == nil {
			continue
		}
		c.Damage += blocker.Power()
		blocker.Damage += c.Power()
		blocked = append(blocked, c, blocker)
	}

	var destroyed []string
	for _, c := range blocked {
		if c.Damage >= c.Toughness() {
			destroyed = append(destroyed, c.ID)
		}
	}
	for _, id := range destroyed {
		for _, pl := range s.Players {
			if c, _ := pl.Field.Find(id); c != nil {
				e.destroyFamiliar(pl, c)
			}
		}
	}
	for _, pl := range s.Players {
		for _, c := range pl.Field {
			c.clearCombat()
		}
	}

	if toPlayer > 0 {
		e.addLog(rules.LogDamage, fmt.Sprintf("%s takes %d damage", e.playerName(defendingPlayer), toPlayer))
		e.dealDamageToPlayer(defendingPlayer, toPlayer)
	}
	e.emit(rules.CombatDamageResolved{
		Attacker:       attackingPlayer,
		Defender:       defendingPlayer,
		DamageToPlayer: toPlayer,
		Destroyed:      destroyed,
	})

	if s.IsOver() {
		return
	}
	e.advancePhase()
}

// playerDamage is how many life-cards an unblocked attacker reveals.
func (e *Engine) playerDamage(c *Card) int {
	power := c.Power()
	if power <= 0 {
		return 0
	}
	if e.rules.PowerDamageToPlayers {
		return power
	}
	return 1
}

// destroyFamiliar moves a card from pl's field to pl's graveyard.
func (e *Engine) destroyFamiliar(pl *Player, c *Card) {
	if _, ok := pl.Field.Take(c.ID); !ok {
		return
	}
	c.reset()
	pl.Graveyard.Add(c)
	e.emit(rules.CreatureDestroyed{Owner: pl.ID, CardID: c.ID, Name: c.Name()})
	e.addLog(rules.LogCombat, fmt.Sprintf("%s is destroyed", c.Name()))
}

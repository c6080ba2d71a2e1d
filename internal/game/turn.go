package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// enterPhase announces the current phase and applies its entry effects.
func (e *Engine) enterPhase() {
	s := e.state
	e.emit(rules.PhaseStarted{Phase: s.Phase, Player: s.CurrentPlayer})
	e.addLog(rules.LogPhase, fmt.Sprintf("Turn %d: %s phase for %s", s.Turn, s.Phase, e.playerName(s.CurrentPlayer)))
	e.logger.Debug("phase started",
		zap.Int("turn", s.Turn),
		zap.String("phase", s.Phase.String()),
		zap.Int("player", s.CurrentPlayer),
	)

	switch s.Phase {
	case rules.PhaseStart:
		if s.IsOpeningTurn() {
			e.addLog(rules.LogTurn, fmt.Sprintf("%s skips the first draw", e.playerName(s.CurrentPlayer)))
			return
		}
		e.drawCards(s.CurrentPlayer, 1)
	case rules.PhaseCombat:
		s.AttackDeclared = false
	case rules.PhaseCombatDamage:
		e.resolveCombat()
	case rules.PhaseRefresh:
		e.refresh(s.CurrentPlayer)
	}
}

// advancePhase leaves the current phase for its successor, ending the turn
// when leaving refresh.
func (e *Engine) advancePhase() {
	s := e.state
	player := s.CurrentPlayer
	e.emit(rules.PhaseEnded{Phase: s.Phase, Player: player})

	if _, _, endedTurn := s.Advance(); endedTurn {
		e.announceTurnEnd(player)
	}
	e.enterPhase()
}

func (e *Engine) announceTurnEnd(player int) {
	s := e.state
	e.emit(rules.TurnEnded{Player: player, NextPlayer: s.CurrentPlayer, Turn: s.Turn})
	e.addLog(rules.LogTurn, fmt.Sprintf("%s ends their turn", e.playerName(player)))
	e.logger.Debug("turn ended",
		zap.Int("player", player),
		zap.Int("next_player", s.CurrentPlayer),
		zap.Int("turn", s.Turn),
	)
}

// endPhase advances one phase on behalf of the current player.
func (e *Engine) endPhase(player int) error {
	if player != e.state.CurrentPlayer {
		return rules.Reject(rules.ErrNotYourTurn, "only %s may end the phase", e.playerName(e.state.CurrentPlayer))
	}
	e.advancePhase()
	return nil
}

// endTurn hands the turn to the opponent. A turn ended before its refresh
// phase still refreshes, so resources are never stranded tapped.
func (e *Engine) endTurn(player int) error {
	s := e.state
	if player != s.CurrentPlayer {
		return rules.Reject(rules.ErrNotYourTurn, "only %s may end the turn", e.playerName(s.CurrentPlayer))
	}
	if s.Phase != rules.PhaseRefresh {
		e.refresh(player)
	}
	e.emit(rules.PhaseEnded{Phase: s.Phase, Player: player})
	s.EndTurn()
	e.announceTurnEnd(player)
	e.enterPhase()
	return nil
}

// passPriority hands priority to the opponent. Two passes in succession
// advance the phase. Refresh has no priority window; it is left with
// endPhase or endTurn.
func (e *Engine) passPriority(player int) error {
	s := e.state
	if s.Phase == rules.PhaseRefresh {
		return rules.Reject(rules.ErrWrongPhase, "no priority in %s, end the turn instead", s.Phase)
	}
	bothPassed := s.Pass(player)
	e.emit(rules.PriorityPassed{Player: player, Next: s.ActivePlayer})
	e.addLog(rules.LogPriority, fmt.Sprintf("%s passes priority", e.playerName(player)))
	if bothPassed {
		e.advancePhase()
	}
	return nil
}

// drawCards moves up to n cards from the top of the deck to the hand and
// returns how many were drawn. Drawing from an empty deck draws nothing.
func (e *Engine) drawCards(player, n int) int {
	pl := e.state.Player(player)
	drawn := 0
	for ; drawn < n; drawn++ {
		c, ok := pl.Deck.TakeFirst()
		if !ok {
			e.addLog(rules.LogTurn, fmt.Sprintf("%s cannot draw from an empty deck", e.playerName(player)))
			break
		}
		c.FaceDown = false
		pl.Hand.Add(c)
	}
	if drawn > 0 {
		e.addLog(rules.LogTurn, fmt.Sprintf("%s draws %d card(s)", e.playerName(player), drawn))
	}
	return drawn
}

// refresh untaps the player's resources and field, clears summoning
// sickness and re-allows resource placement.
func (e *Engine) refresh(player int) {
	pl := e.state.Player(player)
	for _, c := range pl.ResourceRow {
		c.Tapped = false
	}
	for _, c := range pl.Field {
		c.Tapped = false
		c.SummoningSickness = false
	}
	pl.ResourcePlacedThisTurn = false
	e.addLog(rules.LogTurn, fmt.Sprintf("%s refreshes", e.playerName(player)))
}

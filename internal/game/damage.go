package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// dealDamageToPlayer reveals one life-card per point of damage. A burst
// card is played for free and resolved on the spot; any other revealed card
// joins its owner's hand. A player with no life-card left to reveal loses.
func (e *Engine) dealDamageToPlayer(player, amount int) {
	s := e.state
	pl := s.Player(player)
	for i := 0; i < amount; i++ {
		if s.IsOver() {
			return
		}
		c, ok := pl.LifeCards.TakeLast()
		if !ok {
			e.declareWinner(rules.Opponent(player))
			return
		}
		c.FaceDown = false

		if c.Def.HasBurst() {
			e.addLog(rules.LogDamage, fmt.Sprintf("%s reveals %s and bursts it", e.playerName(player), c.Name()))
			e.pushAndResolve(&BurstItem{ID: e.newID(), Card: c, Controller: player})
			continue
		}
		pl.Hand.Add(c)
		e.addLog(rules.LogDamage, fmt.Sprintf("%s reveals %s and adds it to hand", e.playerName(player), c.Name()))
	}
}

func (e *Engine) declareWinner(winner int) {
	s := e.state
	if s.IsOver() {
		return
	}
	w := winner
	s.Winner = &w
	loser := rules.Opponent(winner)
	e.emit(rules.GameOver{Winner: winner, Loser: loser})
	e.addLog(rules.LogGame, fmt.Sprintf("%s wins the game", e.playerName(winner)))
	e.logger.Info("game over",
		zap.Int("winner", winner),
		zap.Int("loser", loser),
		zap.Int("turn", s.Turn),
	)
}

package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/azoth"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// placeResource moves a card from hand to the resource row, once per turn.
func (e *Engine) placeResource(player int, cardID string) error {
	s := e.state
	pl := s.Player(player)
	if player != s.CurrentPlayer {
		return rules.Reject(rules.ErrNotYourTurn, "resources are placed on your own turn")
	}
	if !s.Phase.AllowsResourcePlacement() {
		return rules.Reject(rules.ErrWrongPhase, "cannot place a resource during %s", s.Phase)
	}
	if pl.ResourcePlacedThisTurn {
		return rules.Reject(rules.ErrAlreadyPlacedThisTurn, "%s already placed a resource", e.playerName(player))
	}
	if !pl.Hand.Contains(cardID) {
		return rules.Reject(rules.ErrCardNotInHand, "card %s", cardID)
	}

	c, err := pl.move(cardID, ZoneHand, ZoneResourceRow)
	if err != nil {
		return err
	}
	c.Tapped = false
	pl.ResourcePlacedThisTurn = true
	s.ClearPasses()

	e.emit(rules.ResourcePlaced{Player: player, CardID: cardID})
	e.addLog(rules.LogResource, fmt.Sprintf("%s places %s as a resource", e.playerName(player), c.Name()))
	return nil
}

// resourceSources describes the player's resource row for verification.
func resourceSources(pl *Player) []azoth.Source {
	sources := make([]azoth.Source, len(pl.ResourceRow))
	for i, c := range pl.ResourceRow {
		sources[i] = azoth.Source{ID: c.ID, Tapped: c.Tapped, Elements: c.Elements()}
	}
	return sources
}

// verifyPayment checks paid against cost without tapping anything.
func (e *Engine) verifyPayment(pl *Player, source *Card, cost azoth.Cost, paid []string) (*azoth.Plan, error) {
	plan, err := azoth.Verify(cost, resourceSources(pl), paid)
	if err != nil {
		return nil, err
	}
	if len(plan.UnmatchedElements) > 0 {
		e.logger.Warn("payment does not match element requirements",
			zap.Int("player", pl.ID),
			zap.String("card", source.Name()),
			zap.String("cost", cost.String()),
			zap.Any("unmatched", plan.UnmatchedElements),
		)
	}
	return plan, nil
}

// tapResources taps every resource of a verified plan.
func tapResources(pl *Player, plan *azoth.Plan) {
	for _, id := range plan.Paid {
		if c, _ := pl.ResourceRow.Find(id); c != nil {
			c.Tapped = true
		}
	}
}

package game

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// ActionType names an action a player can submit.
type ActionType string

const (
	ActionPlaceResource   ActionType = "placeResource"
	ActionSummonFamiliar  ActionType = "summonFamiliar"
	ActionCastSpell       ActionType = "castSpell"
	ActionDeclareAttack   ActionType = "declareAttack"
	ActionDeclareBlock    ActionType = "declareBlock"
	ActionActivateAbility ActionType = "activateAbility"
	ActionPassPriority    ActionType = "passPriority"
	ActionEndPhase        ActionType = "endPhase"
	ActionEndTurn         ActionType = "endTurn"
)

// Action is one submission to ProcessAction. Data holds the matching *Data
// struct (by value or pointer) and is ignored by actions that take none.
type Action struct {
	Type ActionType
	Data any
}

type PlaceResourceData struct {
	CardID string `json:"cardId"`
}

type SummonFamiliarData struct {
	CardID  string   `json:"cardId"`
	Payment []string `json:"payment"`
}

type CastSpellData struct {
	CardID  string   `json:"cardId"`
	Payment []string `json:"payment"`
	Targets []string `json:"targets,omitempty"`
}

type DeclareAttackData struct {
	Attackers []string `json:"attackers"`
}

type DeclareBlockData struct {
	Blocks []rules.BlockPair `json:"blocks"`
}

type ActivateAbilityData struct {
	CardID    string   `json:"cardId"`
	AbilityID string   `json:"abilityId"`
	Payment   []string `json:"payment"`
	Targets   []string `json:"targets,omitempty"`
}

// DecodeAction builds an Action from its wire form: an action type name and
// an optional JSON object of data.
func DecodeAction(actionType string, data []byte) (Action, error) {
	t := ActionType(actionType)
	var payload any
	switch t {
	case ActionPlaceResource:
		payload = &PlaceResourceData{}
	case ActionSummonFamiliar:
		payload = &SummonFamiliarData{}
	case ActionCastSpell:
		payload = &CastSpellData{}
	case ActionDeclareAttack:
		payload = &DeclareAttackData{}
	case ActionDeclareBlock:
		payload = &DeclareBlockData{}
	case ActionActivateAbility:
		payload = &ActivateAbilityData{}
	case ActionPassPriority, ActionEndPhase, ActionEndTurn:
		return Action{Type: t}, nil
	default:
		return Action{}, rules.Reject(rules.ErrUnknownAction, "%q", actionType)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, payload); err != nil {
			return Action{}, rules.Reject(rules.ErrInvalidActionData, "%s: %v", actionType, err)
		}
	}
	return Action{Type: t, Data: payload}, nil
}

// actionData extracts a T from an action's data, accepting T or *T.
func actionData[T any](a Action) (T, error) {
	switch d := a.Data.(type) {
	case T:
		return d, nil
	case *T:
		if d != nil {
			return *d, nil
		}
	}
	var zero T
	return zero, rules.Reject(rules.ErrInvalidActionData, "%s expects %T, got %T", a.Type, zero, a.Data)
}

// ProcessAction validates and applies one action for playerID and returns a
// snapshot of the resulting state. A rejected action leaves the game
// exactly as it was and publishes no events.
func (e *Engine) ProcessAction(playerID int, action Action) (*GameState, error) {
	s := e.state
	switch {
	case s == nil:
		return nil, rules.Reject(rules.ErrGameNotInitialized, "no game loaded")
	case s.IsOver():
		return nil, rules.Reject(rules.ErrGameAlreadyOver, "player %d has won", *s.Winner)
	case s.Phase == rules.PhaseSetup:
		return nil, rules.Reject(rules.ErrGameNotStarted, "call StartGame first")
	case playerID != 0 && playerID != 1:
		return nil, rules.Reject(rules.ErrInvalidPlayer, "player %d", playerID)
	case playerID != s.ActivePlayer:
		return nil, rules.Reject(rules.ErrNotYourPriority, "%s holds priority", e.playerName(s.ActivePlayer))
	}

	bookmark := s.Clone()
	rngState, _ := e.src.MarshalBinary()

	if err := e.dispatch(playerID, action); err != nil {
		e.state = bookmark
		if rngState != nil {
			_ = e.src.UnmarshalBinary(rngState)
		}
		e.pending = e.pending[:0]
		e.resolution.Reset()
		e.logger.Debug("action rejected",
			zap.Int("player", playerID),
			zap.String("action", string(action.Type)),
			zap.String("kind", string(rules.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Debug("action applied",
		zap.Int("player", playerID),
		zap.String("action", string(action.Type)),
		zap.Int("turn", e.state.Turn),
		zap.String("phase", e.state.Phase.String()),
	)
	e.flush()
	return e.state.Clone(), nil
}

func (e *Engine) dispatch(player int, action Action) error {
	switch action.Type {
	case ActionPlaceResource:
		d, err := actionData[PlaceResourceData](action)
		if err != nil {
			return err
		}
		return e.placeResource(player, d.CardID)
	case ActionSummonFamiliar:
		d, err := actionData[SummonFamiliarData](action)
		if err != nil {
			return err
		}
		return e.summonFamiliar(player, d)
	case ActionCastSpell:
		d, err := actionData[CastSpellData](action)
		if err != nil {
			return err
		}
		return e.castSpell(player, d)
	case ActionDeclareAttack:
		d, err := actionData[DeclareAttackData](action)
		if err != nil {
			return err
		}
		return e.declareAttack(player, d.Attackers)
	case ActionDeclareBlock:
		d, err := actionData[DeclareBlockData](action)
		if err != nil {
			return err
		}
		return e.declareBlock(player, d.Blocks)
	case ActionActivateAbility:
		d, err := actionData[ActivateAbilityData](action)
		if err != nil {
			return err
		}
		return e.activateAbility(player, d)
	case ActionPassPriority:
		return e.passPriority(player)
	case ActionEndPhase:
		return e.endPhase(player)
	case ActionEndTurn:
		return e.endTurn(player)
	default:
		return rules.Reject(rules.ErrUnknownAction, "%q", action.Type)
	}
}

package rules

import (
	"fmt"
	"strings"
)

// Phase is a step of the turn structure. The zero value is PhaseSetup, the
// pre-game state before StartGame.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseStart
	PhaseMain
	PhaseCombat
	PhaseCombatBlocks
	PhaseCombatDamage
	PhasePostCombat
	PhaseRefresh
)

var phaseNames = map[Phase]string{
	PhaseSetup:        "setup",
	PhaseStart:        "start",
	PhaseMain:         "main",
	PhaseCombat:       "combat",
	PhaseCombatBlocks: "combat-blocks",
	PhaseCombatDamage: "combat-damage",
	PhasePostCombat:   "post-combat",
	PhaseRefresh:      "refresh",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Valid reports whether p is one of the declared phases.
func (p Phase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}

// ParsePhase resolves a phase by its wire name.
func ParsePhase(name string) (Phase, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for phase, n := range phaseNames {
		if n == name {
			return phase, nil
		}
	}
	return PhaseSetup, fmt.Errorf("unknown phase %q", name)
}

// MarshalText encodes the phase by its wire name.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a wire name; see ParsePhase.
func (p *Phase) UnmarshalText(text []byte) error {
	phase, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = phase
	return nil
}

// Next returns the phase that follows p. combat only enters the block and
// damage sub-phases when an attack was declared. endsTurn is true for
// refresh, whose successor is the start phase of the following turn.
func (p Phase) Next(attackDeclared bool) (next Phase, endsTurn bool) {
	switch p {
	case PhaseSetup:
		return PhaseStart, false
	case PhaseStart:
		return PhaseMain, false
	case PhaseMain:
		return PhaseCombat, false
	case PhaseCombat:
		if attackDeclared {
			return PhaseCombatBlocks, false
		}
		return PhasePostCombat, false
	case PhaseCombatBlocks:
		return PhaseCombatDamage, false
	case PhaseCombatDamage:
		return PhasePostCombat, false
	case PhasePostCombat:
		return PhaseRefresh, false
	case PhaseRefresh:
		return PhaseStart, true
	default:
		panic(fmt.Sprintf("rules: no transition from %s", p))
	}
}

// AllowsResourcePlacement reports whether a resource may be placed during p.
func (p Phase) AllowsResourcePlacement() bool {
	return p == PhaseStart || p == PhaseMain
}

// IsMain reports whether p is one of the two main phases, where Familiars
// are summoned, spells cast and abilities activated.
func (p Phase) IsMain() bool {
	return p == PhaseMain || p == PhasePostCombat
}

// TurnState tracks turn progression and who holds priority.
type TurnState struct {
	Turn           int
	Phase          Phase
	CurrentPlayer  int
	ActivePlayer   int
	LastPass       *int
	AttackDeclared bool
}

// NewTurnState returns the pre-game turn state: turn 1, setup, player 0.
func NewTurnState() TurnState {
	return TurnState{Turn: 1, Phase: PhaseSetup}
}

// Opponent returns the other seat of a two-player game.
func Opponent(player int) int {
	return 1 - player
}

// IsOpeningTurn reports whether this is the starting player's first turn.
func (ts *TurnState) IsOpeningTurn() bool {
	return ts.Turn == 1 && ts.CurrentPlayer == 0
}

// Advance moves to the next phase and hands priority back to the current
// player. When refresh is left the turn ends as with EndTurn.
func (ts *TurnState) Advance() (from, to Phase, endedTurn bool) {
	from = ts.Phase
	next, endsTurn := from.Next(ts.AttackDeclared)
	if endsTurn {
		ts.EndTurn()
		return from, ts.Phase, true
	}
	ts.Phase = next
	ts.ActivePlayer = ts.CurrentPlayer
	ts.LastPass = nil
	return from, next, false
}

// EndTurn passes the turn to the opponent. The turn number increments when
// play wraps back to player 0.
func (ts *TurnState) EndTurn() {
	ts.CurrentPlayer = Opponent(ts.CurrentPlayer)
	ts.ActivePlayer = ts.CurrentPlayer
	if ts.CurrentPlayer == 0 {
		ts.Turn++
	}
	ts.Phase = PhaseStart
	ts.LastPass = nil
	ts.AttackDeclared = false
}

// Pass records a priority pass by player and hands priority to the
// opponent. It reports true when the opponent passed immediately before,
// i.e. both players passed in succession.
func (ts *TurnState) Pass(player int) bool {
	opponent := Opponent(player)
	ts.ActivePlayer = opponent
	if ts.LastPass != nil && *ts.LastPass == opponent {
		ts.LastPass = nil
		return true
	}
	passed := player
	ts.LastPass = &passed
	return false
}

// ClearPasses forgets a pending pass; any other game action breaks a
// double-pass sequence.
func (ts *TurnState) ClearPasses() {
	ts.LastPass = nil
}

// GivePriority hands priority to player without recording a pass.
func (ts *TurnState) GivePriority(player int) {
	ts.ActivePlayer = player
	ts.LastPass = nil
}

// Clone returns an independent copy.
func (ts TurnState) Clone() TurnState {
	cpy := ts
	if ts.LastPass != nil {
		p := *ts.LastPass
		cpy.LastPass = &p
	}
	return cpy
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game"
)

// DefaultMaxTurns stops a game that has not found a winner.
const DefaultMaxTurns = 50

// ErrTurnLimit is returned when a game reaches the turn limit undecided.
var ErrTurnLimit = errors.New("turn limit reached")

// Table is the part of the engine a Runner drives.
type Table interface {
	State() *game.GameState
	ProcessAction(player int, action game.Action) (*game.GameState, error)
	TotalCards() int
}

// Result summarizes a finished run.
type Result struct {
	Winner   *int
	Turns    int
	Actions  int
	Rejected int
	State    *game.GameState
}

// Runner plays both seats of a started game with one bot.
type Runner struct {
	logger    *zap.Logger
	bot       *Bot
	maxTurns  int
	turnDelay time.Duration
	onAction  func(player int, action game.Action, state *game.GameState)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMaxTurns sets the turn limit.
func WithMaxTurns(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

// WithTurnDelay pauses between turns so spectators can follow.
func WithTurnDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.turnDelay = d }
}

// WithBot replaces the default bot.
func WithBot(b *Bot) RunnerOption {
	return func(r *Runner) {
		if b != nil {
			r.bot = b
		}
	}
}

// OnAction registers a callback for every accepted action.
func OnAction(fn func(player int, action game.Action, state *game.GameState)) RunnerOption {
	return func(r *Runner) { r.onAction = fn }
}

// NewRunner creates a runner.
func NewRunner(logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger:   logger,
		bot:      NewBot(),
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays until a winner is declared, the turn limit is passed or ctx is
// done. Card conservation is checked after every accepted action. A
// rejected bot action falls back to passing or ending the phase.
func (r *Runner) Run(ctx context.Context, t Table) (Result, error) {
	state := t.State()
	if state == nil {
		return Result{}, errors.New("no game loaded")
	}
	total := t.TotalCards()

	var res Result
	lastPlayer, lastTurn := state.CurrentPlayer, state.Turn
	for !state.IsOver() {
		if err := ctx.Err(); err != nil {
			res.State = state
			return res, err
		}
		if state.Turn > r.maxTurns {
			res.State = state
			res.Turns = state.Turn
			return res, fmt.Errorf("%w after %d turns", ErrTurnLimit, r.maxTurns)
		}

		player := state.ActivePlayer
		action := r.bot.Choose(state, player)
		next, err := t.ProcessAction(player, action)
		if err != nil {
			res.Rejected++
			r.logger.Warn("bot action rejected",
				zap.Int("player", player),
				zap.String("action", string(action.Type)),
				zap.Error(err),
			)
			action = fallback(state, player)
			next, err = t.ProcessAction(player, action)
			if err != nil {
				res.State = state
				return res, fmt.Errorf("fallback %s for player %d: %w", action.Type, player, err)
			}
		}
		res.Actions++
		state = next

		if err := state.VerifyIntegrity(total); err != nil {
			res.State = state
			return res, fmt.Errorf("after action %d (%s): %w", res.Actions, action.Type, err)
		}
		if r.onAction != nil {
			r.onAction(player, action, state)
		}

		if state.CurrentPlayer != lastPlayer || state.Turn != lastTurn {
			lastPlayer, lastTurn = state.CurrentPlayer, state.Turn
			if err := r.pause(ctx); err != nil {
				res.State = state
				return res, err
			}
		}
	}

	res.Winner = state.Winner
	res.Turns = state.Turn
	res.State = state
	r.logger.Info("simulation finished",
		zap.Int("winner", *state.Winner),
		zap.Int("turns", res.Turns),
		zap.Int("actions", res.Actions),
		zap.Int("rejected", res.Rejected),
	)
	return res, nil
}

func (r *Runner) pause(ctx context.Context) error {
	if r.turnDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.turnDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func fallback(state *game.GameState, player int) game.Action {
	if player == state.CurrentPlayer {
		return game.Action{Type: game.ActionEndPhase}
	}
	return pass()
}

// ManagedGame adapts one game hosted by a game.Manager to Table.
type ManagedGame struct {
	Manager *game.Manager
	ID      string
}

// State returns the game's snapshot, or nil when the game is gone.
func (g ManagedGame) State() *game.GameState {
	s, err := g.Manager.Snapshot(g.ID)
	if err != nil {
		return nil
	}
	return s
}

// ProcessAction submits the action to the manager.
func (g ManagedGame) ProcessAction(player int, action game.Action) (*game.GameState, error) {
	return g.Manager.Submit(g.ID, player, action)
}

// TotalCards returns the number of cards dealt into the game.
func (g ManagedGame) TotalCards() int {
	n, _ := g.Manager.TotalCards(g.ID)
	return n
}

package game

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// RulesConfig holds the tunable numbers of the rules.
type RulesConfig struct {
	LifeCards          int
	HandSize           int
	LogCapacity        int
	MaxResolutionDepth int
	// PowerDamageToPlayers makes an unblocked attacker reveal one life-card
	// per point of power instead of one life-card per attacker.
	PowerDamageToPlayers bool
}

// DefaultRulesConfig returns the standard rules: four life-cards, a
// seven-card opening hand and a 100-entry game log.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		LifeCards:          4,
		HandSize:           7,
		LogCapacity:        rules.DefaultLogCapacity,
		MaxResolutionDepth: rules.DefaultMaxResolutionDepth,
	}
}

// PlayerSetup is what a seat brings to a new game: a name, an identity flag
// and an unshuffled deck.
type PlayerSetup struct {
	Name string
	Flag string
	Deck []*CardDefinition
}

// Engine runs a single game. It is synchronous and not safe for concurrent
// use; Manager serializes access for multi-game hosts.
type Engine struct {
	logger     *zap.Logger
	bus        *rules.EventBus
	resolver   EffectResolver
	rules      RulesConfig
	now        func() time.Time
	seed       uint64
	src        *rand.ChaCha8
	rng        *rand.Rand
	state      *GameState
	resolution *rules.ResolutionContext
	pending    []rules.Event
	totalCards int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithResolver installs the effect resolver hook.
func WithResolver(resolver EffectResolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// WithSeed makes shuffles and card ids reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithRules overrides the default rules configuration.
func WithRules(cfg RulesConfig) Option {
	return func(e *Engine) { e.rules = cfg }
}

// WithClock sets the time source used for log and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithEventBus publishes events on an existing bus.
func WithEventBus(bus *rules.EventBus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// NewEngine creates an engine with no game loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		bus:      rules.NewEventBus(),
		resolver: NoopResolver{},
		rules:    DefaultRulesConfig(),
		now:      time.Now,
		seed:     rand.Uint64(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rules.LifeCards <= 0 {
		e.rules.LifeCards = DefaultRulesConfig().LifeCards
	}
	if e.rules.HandSize < 0 {
		e.rules.HandSize = 0
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], e.seed)
	e.src = rand.NewChaCha8(key)
	e.rng = rand.New(e.src)
	e.resolution = rules.NewResolutionContext(e.rules.MaxResolutionDepth)
	return e
}

// Events returns the bus engine events are published on.
func (e *Engine) Events() *rules.EventBus {
	return e.bus
}

// Seed returns the seed driving shuffles and ids.
func (e *Engine) Seed() uint64 {
	return e.seed
}

// Rules returns the active rules configuration.
func (e *Engine) Rules() RulesConfig {
	return e.rules
}

// State returns a snapshot of the game, or nil before InitializeGame.
func (e *Engine) State() *GameState {
	if e.state == nil {
		return nil
	}
	return e.state.Clone()
}

// TotalCards returns the number of cards dealt into the game.
func (e *Engine) TotalCards() int {
	return e.totalCards
}

// InitializeGame builds a fresh game from exactly two player setups:
// shuffles each deck, deals face-down life-cards and then the opening hand.
func (e *Engine) InitializeGame(players []PlayerSetup) error {
	if len(players) != 2 {
		return rules.Reject(rules.ErrInvalidPlayerCount, "need exactly 2 players, got %d", len(players))
	}
	if e.state != nil && e.state.Phase != rules.PhaseSetup && !e.state.IsOver() {
		return rules.Reject(rules.ErrAlreadyStarted, "a game is in progress")
	}
	minDeck := e.rules.LifeCards + e.rules.HandSize
	for i, setup := range players {
		if len(setup.Deck) < minDeck {
			return rules.Reject(rules.ErrInvalidDeck, "player %d deck has %d cards, need at least %d", i, len(setup.Deck), minDeck)
		}
		for j, def := range setup.Deck {
			if def == nil {
				return rules.Reject(rules.ErrInvalidDeck, "player %d deck entry %d is empty", i, j)
			}
		}
	}

	e.state = newGameState(e.rules.LogCapacity)
	e.pending = e.pending[:0]
	e.resolution.Reset()
	e.totalCards = 0

	var names [2]string
	for i, setup := range players {
		pl := &Player{ID: i, Name: setup.Name, Flag: setup.Flag}
		for _, def := range setup.Deck {
			pl.Deck.Add(newCard(e.newID(), i, def))
		}
		e.shuffle(pl.Deck)

		for n := 0; n < e.rules.LifeCards; n++ {
			c, _ := pl.Deck.TakeFirst()
			c.FaceDown = true
			pl.LifeCards.Add(c)
		}
		for n := 0; n < e.rules.HandSize; n++ {
			c, _ := pl.Deck.TakeFirst()
			pl.Hand.Add(c)
		}

		e.state.Players[i] = pl
		e.totalCards += len(setup.Deck)
		names[i] = setup.Name
	}

	e.emit(rules.GameInitialized{Players: names, LifeCards: e.rules.LifeCards, HandSize: e.rules.HandSize})
	e.addLog(rules.LogGame, fmt.Sprintf("Game initialized: %s vs %s", names[0], names[1]))
	e.logger.Info("game initialized",
		zap.String("player0", names[0]),
		zap.String("player1", names[1]),
		zap.Int("cards", e.totalCards),
		zap.Uint64("seed", e.seed),
	)
	e.flush()
	return nil
}

// StartGame leaves setup and begins turn 1 with player 0.
func (e *Engine) StartGame() error {
	if e.state == nil {
		return rules.Reject(rules.ErrGameNotInitialized, "call InitializeGame first")
	}
	if e.state.Phase != rules.PhaseSetup {
		return rules.Reject(rules.ErrAlreadyStarted, "game is in %s", e.state.Phase)
	}

	e.state.Advance()
	e.emit(rules.GameStarted{FirstPlayer: e.state.CurrentPlayer})
	e.addLog(rules.LogGame, fmt.Sprintf("Game started, %s goes first", e.playerName(e.state.CurrentPlayer)))
	e.logger.Info("game started", zap.Int("first_player", e.state.CurrentPlayer))
	e.enterPhase()
	e.flush()
	return nil
}

// shuffle is an in-place Fisher-Yates shuffle driven by the engine rng.
func (e *Engine) shuffle(p Pile) {
	for i := len(p) - 1; i > 0; i-- {
		j := e.rng.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}
}

func (e *Engine) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(e.src)).String()
}

func (e *Engine) emit(payload rules.Payload) {
	e.pending = append(e.pending, rules.NewEvent(payload, e.state.Turn, e.state.Phase, e.now()))
}

// flush publishes the events of a completed operation. Events of a
// rejected action are dropped with its mutations.
func (e *Engine) flush() {
	events := e.pending
	e.pending = nil
	e.bus.PublishBatch(events)
}

func (e *Engine) addLog(category rules.LogCategory, text string) {
	e.state.Log.Add(category, text, e.now())
}

func (e *Engine) playerName(id int) string {
	if pl := e.state.Player(id); pl != nil && pl.Name != "" {
		return pl.Name
	}
	return fmt.Sprintf("Player %d", id)
}

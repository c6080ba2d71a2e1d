package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// ErrGameNotFound is returned for an unknown game id.
var ErrGameNotFound = errors.New("game not found")

// session is one hosted game. mu serializes every call into its engine.
type session struct {
	mu     sync.Mutex
	id     string
	engine *Engine
}

// Manager hosts many games at once. Calls for one game are serialized;
// different games proceed in parallel.
type Manager struct {
	logger   *zap.Logger
	resolver EffectResolver
	rules    RulesConfig
	recorder *ReplayRecorder

	mu       sync.RWMutex
	sessions map[string]*session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerResolver sets the effect resolver given to every new game.
func WithManagerResolver(resolver EffectResolver) ManagerOption {
	return func(m *Manager) { m.resolver = resolver }
}

// WithManagerRules sets the rules given to every new game.
func WithManagerRules(cfg RulesConfig) ManagerOption {
	return func(m *Manager) { m.rules = cfg }
}

// WithReplayRecorder records every game the manager hosts.
func WithReplayRecorder(recorder *ReplayRecorder) ManagerOption {
	return func(m *Manager) { m.recorder = recorder }
}

// NewManager creates an empty manager.
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger:   logger,
		resolver: NoopResolver{},
		rules:    DefaultRulesConfig(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create sets up a new game from two player setups and returns its id. The
// game still needs Start. seed makes the game reproducible; pass nil for a
// random one.
func (m *Manager) Create(setups []PlayerSetup, seed *uint64) (string, error) {
	id := uuid.NewString()
	opts := []Option{
		WithLogger(m.logger.With(zap.String("game_id", id))),
		WithResolver(m.resolver),
		WithRules(m.rules),
	}
	if seed != nil {
		opts = append(opts, WithSeed(*seed))
	}
	engine := NewEngine(opts...)
	if err := engine.InitializeGame(setups); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[id] = &session{id: id, engine: engine}
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.StartRecording(id, engine.Seed(), engine.Rules(), setups)
	}
	m.logger.Info("game created",
		zap.String("game_id", id),
		zap.Uint64("seed", engine.Seed()),
	)
	return id, nil
}

// Start begins turn 1 of a created game.
func (m *Manager) Start(gameID string) (*GameState, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.engine.StartGame(); err != nil {
		return nil, err
	}
	state := sess.engine.State()
	if m.recorder != nil {
		m.recorder.Record(gameID, state.CurrentPlayer, Action{}, state.Clone())
	}
	return state, nil
}

// Submit applies one action to a game.
func (m *Manager) Submit(gameID string, playerID int, action Action) (*GameState, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, err := sess.engine.ProcessAction(playerID, action)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}
	if m.recorder != nil {
		m.recorder.Record(gameID, playerID, action, state.Clone())
	}
	if state.IsOver() {
		m.logger.Info("game finished",
			zap.String("game_id", gameID),
			zap.Int("winner", *state.Winner),
			zap.Int("turn", state.Turn),
		)
	}
	return state, nil
}

// Snapshot returns the current state of a game.
func (m *Manager) Snapshot(gameID string) (*GameState, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.engine.State(), nil
}

// TotalCards returns the number of cards dealt into a game.
func (m *Manager) TotalCards(gameID string) (int, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.engine.TotalCards(), nil
}

// Subscribe registers a listener for a game's events and returns a handle
// for Unsubscribe.
func (m *Manager) Subscribe(gameID string, listener rules.Listener) (int, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return -1, err
	}
	return sess.engine.Events().Subscribe(listener), nil
}

// Unsubscribe removes a listener from a game.
func (m *Manager) Unsubscribe(gameID string, handle int) error {
	sess, err := m.session(gameID)
	if err != nil {
		return err
	}
	sess.engine.Events().Unsubscribe(handle)
	return nil
}

// Events returns a game's event bus.
func (m *Manager) Events(gameID string) (*rules.EventBus, error) {
	sess, err := m.session(gameID)
	if err != nil {
		return nil, err
	}
	return sess.engine.Events(), nil
}

// Remove drops a game. Its replay, if recorded, is saved first.
func (m *Manager) Remove(gameID string) error {
	m.mu.Lock()
	_, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if m.recorder != nil && m.recorder.IsRecording(gameID) {
		if err := m.recorder.Save(gameID); err != nil {
			m.logger.Warn("failed to save replay", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	m.logger.Info("game removed", zap.String("game_id", gameID))
	return nil
}

// List returns the ids of all hosted games in lexical order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) session(gameID string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

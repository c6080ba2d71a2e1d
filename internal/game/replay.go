package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 1

// Frame is one accepted step of a game: the action that produced it and
// the resulting state. The first frame of a replay has no action and holds
// the state right after StartGame.
type Frame struct {
	Player   int
	Action   Action
	Checksum string
	State    *GameState
}

// Replay is everything needed to watch a game back or to reproduce it: the
// seed, the rules, both decks and every accepted action.
type Replay struct {
	GameID       string
	Seed         uint64
	Rules        RulesConfig
	Setups       []PlayerSetup
	Frames       []Frame
	CurrentIndex int
	mu           sync.RWMutex
}

func init() {
	gob.Register(PlaceResourceData{})
	gob.Register(SummonFamiliarData{})
	gob.Register(CastSpellData{})
	gob.Register(DeclareAttackData{})
	gob.Register(DeclareBlockData{})
	gob.Register(ActivateAbilityData{})
}

// NewReplay creates an empty replay for a game.
func NewReplay(gameID string, seed uint64, cfg RulesConfig, setups []PlayerSetup) *Replay {
	return &Replay{
		GameID: gameID,
		Seed:   seed,
		Rules:  cfg,
		Setups: append([]PlayerSetup(nil), setups...),
		Frames: make([]Frame, 0),
	}
}

// Record appends a frame. state must not be mutated afterwards.
func (r *Replay) Record(player int, action Action, state *GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Frames = append(r.Frames, Frame{
		Player:   player,
		Action:   normalizeAction(action),
		Checksum: state.Checksum(),
		State:    state,
	})
}

// Start rewinds playback to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the frame at the cursor and moves past it.
func (r *Replay) Next() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Frames) {
		f := r.Frames[r.CurrentIndex]
		r.CurrentIndex++
		return f, true
	}
	return Frame{}, false
}

// Previous steps the cursor back and returns the frame there.
func (r *Replay) Previous() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Frames[r.CurrentIndex], true
	}
	return Frame{}, false
}

// Skip moves the cursor by count frames, clamped to the recording.
func (r *Replay) Skip(count int) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	r.CurrentIndex = min(max(r.CurrentIndex+count, 0), len(r.Frames)-1)
	return r.Frames[r.CurrentIndex], true
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Frames)
}

// FrameAt returns the frame at index.
func (r *Replay) FrameAt(index int) (Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Frames) {
		return r.Frames[index], true
	}
	return Frame{}, false
}

// Reproduce replays the recorded actions on a fresh engine and checks that
// every frame's checksum comes out the same.
func (r *Replay) Reproduce(opts ...Option) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts = append(opts, WithSeed(r.Seed), WithRules(r.Rules))
	engine := NewEngine(opts...)
	if err := engine.InitializeGame(r.Setups); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := engine.StartGame(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	for i, frame := range r.Frames {
		var state *GameState
		if frame.Action.Type == "" {
			state = engine.State()
		} else {
			var err error
			state, err = engine.ProcessAction(frame.Player, frame.Action)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, frame.Action.Type, err)
			}
		}
		if got := state.Checksum(); got != frame.Checksum {
			return fmt.Errorf("frame %d diverged: checksum %s, recorded %s", i, got, frame.Checksum)
		}
	}
	return nil
}

// SaveToFile writes the replay as gzipped gob to <directory>/<game id>.replay.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.GameID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		GameID:     r.GameID,
		Seed:       r.Seed,
		Rules:      r.Rules,
		Setups:     r.Setups,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		FrameCount: len(r.Frames),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range r.Frames {
		if err := encoder.Encode(&r.Frames[i]); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	return gzipWriter.Close()
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.GameID, metadata.Seed, metadata.Rules, metadata.Setups)
	for i := 0; i < metadata.FrameCount; i++ {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		replay.Frames = append(replay.Frames, frame)
	}
	return replay, nil
}

type replayMetadata struct {
	GameID     string
	Seed       uint64
	Rules      RulesConfig
	Setups     []PlayerSetup
	Timestamp  time.Time
	Version    int
	FrameCount int
}

// normalizeAction stores action data by value so it survives gob encoding.
func normalizeAction(a Action) Action {
	switch d := a.Data.(type) {
	case *PlaceResourceData:
		a.Data = *d
	case *SummonFamiliarData:
		a.Data = *d
	case *CastSpellData:
		a.Data = *d
	case *DeclareAttackData:
		a.Data = *d
	case *DeclareBlockData:
		a.Data = *d
	case *ActivateAbilityData:
		a.Data = *d
	}
	return a
}

// ReplayRecorder keeps replays for the games of a Manager.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder saving to saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins a replay for a game.
func (rr *ReplayRecorder) StartRecording(gameID string, seed uint64, cfg RulesConfig, setups []PlayerSetup) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID, seed, cfg, setups)
	rr.logger.Info("started replay recording", zap.String("game_id", gameID))
}

// Record adds a frame to a game being recorded.
func (rr *ReplayRecorder) Record(gameID string, player int, action Action, state *GameState) {
	rr.mu.RLock()
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.Record(player, action, state)
	rr.logger.Debug("recorded replay frame",
		zap.String("game_id", gameID),
		zap.Int("frame_count", replay.Size()),
	)
}

// Replay returns the in-memory replay of a game.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, ok := rr.replays[gameID]
	return replay, ok
}

// Save writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) Save(gameID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[gameID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for game %s", gameID)
	}
	delete(rr.replays, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// Load reads a saved replay from the recorder's directory.
func (rr *ReplayRecorder) Load(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", replay.Size()),
	)
	return replay, nil
}

// Discard drops a replay without saving it.
func (rr *ReplayRecorder) Discard(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
}

// IsRecording reports whether a game is being recorded.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	_, ok := rr.replays[gameID]
	return ok
}

package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// recordedGame plays a short game and returns its replay.
func recordedGame(t *testing.T) *Replay {
	t.Helper()
	e := startedEngine(t)
	replay := NewReplay("game-123", e.Seed(), e.Rules(), testSetups())
	replay.Record(0, Action{}, e.State())

	steps := []struct {
		player int
		action Action
	}{
		{0, Action{Type: ActionPlaceResource, Data: &PlaceResourceData{CardID: e.state.Player(0).Hand[0].ID}}},
		{0, Action{Type: ActionEndPhase}},
		{0, Action{Type: ActionPassPriority}},
		{1, Action{Type: ActionPassPriority}},
		{0, Action{Type: ActionEndTurn}},
	}
	for _, step := range steps {
		state := act(t, e, step.player, step.action.Type, step.action.Data)
		replay.Record(step.player, step.action, state)
	}
	return replay
}

func TestReplayNavigation(t *testing.T) {
	replay := recordedGame(t)
	require.Equal(t, 6, replay.Size())

	replay.Start()
	f, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, rules.PhaseStart, f.State.Phase)
	assert.Equal(t, ActionType(""), f.Action.Type)

	f, ok = replay.Next()
	require.True(t, ok)
	assert.Equal(t, ActionPlaceResource, f.Action.Type)
	_, isValue := f.Action.Data.(PlaceResourceData)
	assert.True(t, isValue, "recorded data is stored by value")

	f, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, ActionPlaceResource, f.Action.Type)
	assert.Equal(t, 1, replay.CurrentIndex)

	f, ok = replay.Skip(100)
	require.True(t, ok)
	assert.Equal(t, ActionEndTurn, f.Action.Type)
	assert.Equal(t, 1, f.State.CurrentPlayer)

	f, ok = replay.Skip(-100)
	require.True(t, ok)
	assert.Equal(t, 0, replay.CurrentIndex)

	_, ok = replay.FrameAt(6)
	assert.False(t, ok)
	f, ok = replay.FrameAt(4)
	require.True(t, ok)
	assert.Equal(t, rules.PhaseCombat, f.State.Phase, "double pass advanced main to combat")
}

func TestReplayEmptyNavigation(t *testing.T) {
	replay := NewReplay("empty", 1, DefaultRulesConfig(), nil)
	_, ok := replay.Next()
	assert.False(t, ok)
	_, ok = replay.Previous()
	assert.False(t, ok)
	_, ok = replay.Skip(1)
	assert.False(t, ok)
}

func TestReplayReproduce(t *testing.T) {
	replay := recordedGame(t)
	require.NoError(t, replay.Reproduce(WithLogger(zaptest.NewLogger(t))))

	replay.Frames[3].Checksum = "tampered"
	err := replay.Reproduce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 3 diverged")
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	replay := recordedGame(t)
	require.NoError(t, replay.SaveToFile(dir))

	_, err := os.Stat(filepath.Join(dir, "game-123.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "game-123")
	require.NoError(t, err)
	assert.Equal(t, replay.GameID, loaded.GameID)
	assert.Equal(t, replay.Seed, loaded.Seed)
	require.Equal(t, replay.Size(), loaded.Size())
	for i := range replay.Frames {
		assert.Equal(t, replay.Frames[i].Checksum, loaded.Frames[i].Checksum)
		assert.Equal(t, replay.Frames[i].Action, loaded.Frames[i].Action)
		assert.Equal(t, replay.Frames[i].State.Turn, loaded.Frames[i].State.Turn)
	}
	require.NoError(t, loaded.Reproduce())
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "nope")
	require.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	rr := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	assert.False(t, rr.IsRecording("g"))

	rr.Record("g", 0, Action{}, startedEngine(t).State())
	_, ok := rr.Replay("g")
	assert.False(t, ok, "recording must be started first")

	rr.StartRecording("g", 1, DefaultRulesConfig(), testSetups())
	rr.Record("g", 0, Action{}, startedEngine(t).State())
	replay, ok := rr.Replay("g")
	require.True(t, ok)
	assert.Equal(t, 1, replay.Size())

	rr.Discard("g")
	assert.False(t, rr.IsRecording("g"))
	require.Error(t, rr.Save("g"))
}

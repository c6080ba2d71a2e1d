package integration

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/azoth-server-go/internal/catalog"
	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
	"github.com/thraizz/azoth-server-go/internal/game/watchers"
	"github.com/thraizz/azoth-server-go/internal/relay"
	"github.com/thraizz/azoth-server-go/internal/sim"
)

const cardsFile = "../../data/cards.yaml"

type gameEnv struct {
	catalog *catalog.Catalog
	manager *game.Manager
	replays *game.ReplayRecorder
	logger  *zap.Logger
}

func newGameEnv(t testing.TB) *gameEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cat, err := catalog.LoadFile(cardsFile)
	require.NoError(t, err)

	replays := game.NewReplayRecorder(logger, t.TempDir())
	m := game.NewManager(logger,
		game.WithManagerResolver(sim.KeywordResolver{}),
		game.WithReplayRecorder(replays),
	)
	return &gameEnv{catalog: cat, manager: m, replays: replays, logger: logger}
}

func (env *gameEnv) create(t testing.TB, deckA, deckB string, seed uint64) string {
	t.Helper()
	a, err := env.catalog.Setup(deckA, "Alice")
	require.NoError(t, err)
	b, err := env.catalog.Setup(deckB, "Bob")
	require.NoError(t, err)

	id, err := env.manager.Create([]game.PlayerSetup{a, b}, &seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.manager.Remove(id) })
	return id
}

func (env *gameEnv) play(t testing.TB, id string, opts ...sim.RunnerOption) sim.Result {
	t.Helper()
	_, err := env.manager.Start(id)
	require.NoError(t, err)

	opts = append([]sim.RunnerOption{sim.WithMaxTurns(60)}, opts...)
	res, err := sim.NewRunner(env.logger, opts...).Run(context.Background(), sim.ManagedGame{Manager: env.manager, ID: id})
	if err != nil {
		require.ErrorIs(t, err, sim.ErrTurnLimit)
	}
	return res
}

func TestSampleDecksPlayToCompletion(t *testing.T) {
	env := newGameEnv(t)
	decks := env.catalog.Decks()
	require.GreaterOrEqual(t, len(decks), 2)

	for seed := uint64(1); seed <= 5; seed++ {
		id := env.create(t, decks[0], decks[1], seed)
		stats := watchers.Standard()
		_, err := env.manager.Subscribe(id, stats.Notify)
		require.NoError(t, err)

		res := env.play(t, id)
		require.NotNil(t, res.State)
		assert.Positive(t, res.Actions)

		total, err := env.manager.TotalCards(id)
		require.NoError(t, err)
		require.NoError(t, res.State.VerifyIntegrity(total))

		destroyed := stats.Get("FamiliarsDestroyedWatcher").(*watchers.FamiliarsDestroyedWatcher)
		for p := 0; p < 2; p++ {
			familiars := 0
			for _, c := range res.State.Player(p).Graveyard {
				if c.IsFamiliar() {
					familiars++
				}
			}
			assert.Equal(t, familiars, destroyed.AmountByOwner(p), "seed %d player %d", seed, p)
		}

		if res.Winner != nil {
			assert.True(t, res.State.IsOver())
			assert.Zero(t, res.State.Player(1-*res.Winner).LifeCards.Len())
		}
	}
}

func TestReplayReproducesCatalogGame(t *testing.T) {
	env := newGameEnv(t)
	decks := env.catalog.Decks()
	id := env.create(t, decks[len(decks)-1], decks[0], 77)
	res := env.play(t, id)

	replay, ok := env.replays.Replay(id)
	require.True(t, ok)
	assert.Equal(t, res.Actions+1, replay.Size())
	require.NoError(t, replay.Reproduce(game.WithResolver(sim.KeywordResolver{})))

	snapshot, err := env.manager.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, res.State.Checksum(), snapshot.Checksum())
}

func TestSpectatorSeesEveryEvent(t *testing.T) {
	env := newGameEnv(t)
	decks := env.catalog.Decks()
	id := env.create(t, decks[0], decks[1], 3)

	hub := relay.NewHub(env.logger.Named("relay"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?game=live", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	var (
		mu   sync.Mutex
		sent []string
	)
	_, err = env.manager.Subscribe(id, func(e rules.Event) {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, e.Type.String())
	})
	require.NoError(t, err)
	bus, err := env.manager.Events(id)
	require.NoError(t, err)
	hub.Attach("live", bus)

	env.play(t, id, sim.WithTurnDelay(2*time.Millisecond))

	mu.Lock()
	want := append([]string(nil), sent...)
	mu.Unlock()
	require.NotEmpty(t, want)
	assert.Equal(t, "gameStarted", want[0])

	got := make([]string, 0, len(want))
	for len(got) < len(want) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg struct {
			Type   string `json:"type"`
			GameID string `json:"game_id"`
			Data   struct {
				Event string `json:"event"`
			} `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, relay.TypeEvent, msg.Type)
		require.Equal(t, "live", msg.GameID)
		got = append(got, msg.Data.Event)
	}
	assert.Equal(t, want, got)
}

func TestManagerRejectsOutOfTurnActions(t *testing.T) {
	env := newGameEnv(t)
	decks := env.catalog.Decks()
	id := env.create(t, decks[0], decks[1], 5)
	state, err := env.manager.Start(id)
	require.NoError(t, err)

	other := 1 - state.CurrentPlayer
	card := state.Player(other).Hand[0].ID
	_, err = env.manager.Submit(id, other, game.Action{
		Type: game.ActionPlaceResource,
		Data: &game.PlaceResourceData{CardID: card},
	})
	require.Error(t, err)

	after, err := env.manager.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, state.Checksum(), after.Checksum())

	replay, ok := env.replays.Replay(id)
	require.True(t, ok)
	assert.Equal(t, 1, replay.Size(), "rejected actions are not recorded")
}

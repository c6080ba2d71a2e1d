package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/catalog"
	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/relay"
	"github.com/thraizz/azoth-server-go/internal/sim"
)

// liveChannel is the game id under which the current game is always
// relayed, so spectators need not know game ids in advance.
const liveChannel = "live"

type serveOptions struct {
	games int
	deckA string
	deckB string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Play bot games continuously and stream their events over WebSocket",
		Long: `Serve spectators on ws://<relay.address>/ws. Connect with ?game=live to follow
whatever game is running, or with ?game=<id> for one game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.games, "games", 0, "number of games to play before exiting (0 plays until interrupted)")
	cmd.Flags().StringVar(&opts.deckA, "deck-a", "", "deck for player A")
	cmd.Flags().StringVar(&opts.deckB, "deck-b", "", "deck for player B")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	cfg := root.cfg
	logger := root.logger

	cat, err := root.loadCatalog(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := relay.NewHub(logger.Named("relay"))
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d spectators\n", hub.ClientCount())
	})
	srv := &http.Server{
		Addr:              cfg.Relay.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("relay listening", zap.String("address", cfg.Relay.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	playErr := make(chan error, 1)
	go func() {
		playErr <- playGames(ctx, root, cat, hub, opts)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("relay server: %w", err)
		}
	case err = <-playErr:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("relay shutdown", zap.Error(shutdownErr))
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// playGames runs bot games back to back, relaying each one.
func playGames(ctx context.Context, root *rootOptions, cat *catalog.Catalog, hub *relay.Hub, opts *serveOptions) error {
	cfg := root.cfg
	logger := root.logger

	managerOpts := []game.ManagerOption{
		game.WithManagerResolver(sim.KeywordResolver{}),
		game.WithManagerRules(root.rules()),
	}
	if cfg.Replay.Enabled {
		managerOpts = append(managerOpts, game.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Replay.Directory)))
	}
	m := game.NewManager(logger, managerOpts...)
	runner := sim.NewRunner(logger, sim.WithMaxTurns(cfg.Rules.MaxTurns), sim.WithTurnDelay(cfg.Relay.TurnDelay))

	for played := 0; opts.games == 0 || played < opts.games; played++ {
		seats, err := setups(cat, opts.deckA, opts.deckB)
		if err != nil {
			return err
		}
		id, err := m.Create(seats, nil)
		if err != nil {
			return err
		}
		bus, err := m.Events(id)
		if err != nil {
			return err
		}
		hub.Attach(id, bus)
		hub.Attach(liveChannel, bus)

		if _, err := m.Start(id); err != nil {
			return err
		}
		res, err := runner.Run(ctx, sim.ManagedGame{Manager: m, ID: id})
		if removeErr := m.Remove(id); removeErr != nil {
			logger.Warn("failed to remove game", zap.String("game_id", id), zap.Error(removeErr))
		}
		switch {
		case errors.Is(err, sim.ErrTurnLimit):
			logger.Info("game undecided", zap.String("game_id", id), zap.Int("turns", res.Turns))
		case err != nil:
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Relay.TurnDelay * 4):
		}
	}
	return nil
}

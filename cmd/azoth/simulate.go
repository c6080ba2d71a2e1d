package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/game/rules"
	"github.com/thraizz/azoth-server-go/internal/game/watchers"
	"github.com/thraizz/azoth-server-go/internal/sim"
)

type simulateOptions struct {
	deckA    string
	deckB    string
	seed     uint64
	maxTurns int
	showLog  bool
	replay   bool
}

func newSimulateCommand(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a seeded bot-versus-bot game and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.deckA, "deck-a", "", "deck for player A (default: first deck in the catalog)")
	cmd.Flags().StringVar(&opts.deckB, "deck-b", "", "deck for player B (default: last deck in the catalog)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "shuffle seed (default: rules.seed, random when both are 0)")
	cmd.Flags().IntVar(&opts.maxTurns, "max-turns", 0, "turn limit (default: rules.max_turns)")
	cmd.Flags().BoolVar(&opts.showLog, "log", false, "print the game log")
	cmd.Flags().BoolVar(&opts.replay, "replay", false, "record a replay (also enabled by replay.enabled)")
	return cmd
}

func runSimulate(cmd *cobra.Command, root *rootOptions, opts *simulateOptions) error {
	ctx := cmd.Context()
	cfg := root.cfg
	logger := root.logger

	cat, err := root.loadCatalog(ctx)
	if err != nil {
		return err
	}
	seats, err := setups(cat, opts.deckA, opts.deckB)
	if err != nil {
		return err
	}

	managerOpts := []game.ManagerOption{
		game.WithManagerResolver(sim.KeywordResolver{}),
		game.WithManagerRules(root.rules()),
	}
	if opts.replay || cfg.Replay.Enabled {
		managerOpts = append(managerOpts, game.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Replay.Directory)))
	}
	m := game.NewManager(logger, managerOpts...)

	var seed *uint64
	switch {
	case opts.seed != 0:
		seed = &opts.seed
	case cfg.Rules.Seed != 0:
		seed = &cfg.Rules.Seed
	}

	id, err := m.Create(seats, seed)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Remove(id); err != nil {
			logger.Warn("failed to remove game", zap.Error(err))
		}
	}()

	stats := watchers.Standard()
	if _, err := m.Subscribe(id, stats.Notify); err != nil {
		return err
	}
	if _, err := m.Start(id); err != nil {
		return err
	}

	maxTurns := opts.maxTurns
	if maxTurns <= 0 {
		maxTurns = cfg.Rules.MaxTurns
	}
	runner := sim.NewRunner(logger, sim.WithMaxTurns(maxTurns))
	res, err := runner.Run(ctx, sim.ManagedGame{Manager: m, ID: id})
	if err != nil && !errors.Is(err, sim.ErrTurnLimit) {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.showLog && res.State != nil {
		for _, entry := range res.State.Log.Entries() {
			fmt.Fprintf(out, "[%s] %s\n", entry.Category, entry.Text)
		}
		fmt.Fprintln(out)
	}
	printResult(out, id, seats, res)
	printStats(out, seats, stats)
	return nil
}

func printResult(out io.Writer, id string, seats []game.PlayerSetup, res sim.Result) {
	fmt.Fprintf(out, "game %s\n", id)
	if res.Winner == nil {
		fmt.Fprintf(out, "no winner after %d turns (%d actions)\n", res.Turns, res.Actions)
		return
	}
	fmt.Fprintf(out, "winner: %s on turn %d (%d actions, %d rejected)\n",
		seats[*res.Winner].Name, res.Turns, res.Actions, res.Rejected)
}

func printStats(out io.Writer, seats []game.PlayerSetup, reg *rules.WatcherRegistry) {
	spells, _ := reg.Get("SpellsCastWatcher").(*watchers.SpellsCastWatcher)
	destroyed, _ := reg.Get("FamiliarsDestroyedWatcher").(*watchers.FamiliarsDestroyedWatcher)
	lost, _ := reg.Get("LifeCardsLostWatcher").(*watchers.LifeCardsLostWatcher)
	if spells == nil || destroyed == nil || lost == nil {
		return
	}
	for i, seat := range seats {
		fmt.Fprintf(out, "%s: %d spells cast, %d familiars lost, %d life-cards lost to combat\n",
			seat.Name, spells.Count(i), destroyed.AmountByOwner(i), lost.Lost(i))
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thraizz/azoth-server-go/internal/sim"
)

func newLeagueCommand(root *rootOptions) *cobra.Command {
	var (
		games    int
		seed     uint64
		maxTurns int
		workers  int
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "league",
		Short: "Play every catalog deck against every other and print standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = root.cfg.Rules.Seed
			}
			if maxTurns <= 0 {
				maxTurns = root.cfg.Rules.MaxTurns
			}

			opts := []sim.LeagueOption{
				sim.WithGames(games),
				sim.WithLeagueRules(root.rules()),
				sim.WithLeagueMaxTurns(maxTurns),
				sim.WithWorkers(workers),
			}
			if seed != 0 {
				opts = append(opts, sim.WithLeagueSeed(seed))
			}
			res, err := sim.NewLeague(root.logger.Named("league"), cat, opts...).Play(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if verbose {
				fmt.Fprintln(w, "HOME\tAWAY\tSEED\tWINNER\tTURNS")
				for _, m := range res.Matches {
					winner := m.Winner
					if winner == "" {
						winner = "draw"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", m.Home, m.Away, m.Seed, winner, m.Turns)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, "#\tDECK\tPLAYED\tWON\tLOST\tDRAWN\tPOINTS")
			for i, s := range res.Standings {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\n", i+1, s.Deck, s.Played(), s.Wins, s.Losses, s.Draws, s.Points)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&games, "games", 1, "games per pairing and seat order")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed of the first match (default: rules.seed, else 1)")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "turn limit after which a match is drawn (default: rules.max_turns)")
	cmd.Flags().IntVar(&workers, "workers", 0, "matches played concurrently (default: GOMAXPROCS)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every match")
	return cmd
}

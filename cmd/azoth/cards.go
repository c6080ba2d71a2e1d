package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thraizz/azoth-server-go/internal/catalog"
	"github.com/thraizz/azoth-server-go/internal/game"
)

func newCardsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Inspect and import the card catalog",
	}
	cmd.AddCommand(newCardsListCommand(root))
	cmd.AddCommand(newCardsDecksCommand(root))
	cmd.AddCommand(newCardsImportCommand(root))
	return cmd
}

func newCardsListCommand(root *rootOptions) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List card definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want *game.CardType
			if typeFilter != "" {
				t, err := game.ParseCardType(typeFilter)
				if err != nil {
					return err
				}
				want = &t
			}

			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tCOST\tSTATS\tELEMENTS\tABILITIES")
			for _, def := range cat.Cards() {
				if want != nil && def.Type != *want {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					def.Name, def.Type, def.Cost, statLine(def), elements(def), abilities(def))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "only list cards of this type (familiar|spell|other)")
	return cmd
}

func newCardsDecksCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List decks and their sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DECK\tFLAG\tCARDS")
			for _, deck := range cat.RawDecks() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", deck.Name, deck.Flag, deck.Size())
			}
			return w.Flush()
		},
	}
}

func newCardsImportCommand(root *rootOptions) *cobra.Command {
	var (
		file      string
		replace   bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a YAML catalog into PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg
			if cfg.Catalog.DatabaseURL == "" {
				return errors.New("catalog.database_url is not configured")
			}
			if file == "" {
				file = cfg.Catalog.Path
			}

			cat, err := catalog.LoadFile(file)
			if err != nil {
				return err
			}

			pool, err := catalog.Connect(ctx, cfg.Catalog.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := catalog.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			stats, err := catalog.Import(ctx, pool, cat, catalog.ImportOptions{
				BatchSize: batchSize,
				Replace:   replace,
			}, root.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards and %d decks in %s\n",
				stats.Cards, stats.Decks, stats.Duration.Round(time.Millisecond))
			if stats.Failed > 0 {
				return fmt.Errorf("%d records failed to import", stats.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML catalog to import (default: catalog.path)")
	cmd.Flags().BoolVar(&replace, "replace", false, "clear existing catalog tables first")
	cmd.Flags().IntVar(&batchSize, "batch-size", catalog.DefaultBatchSize, "cards per transaction")
	return cmd
}

func statLine(def *game.CardDefinition) string {
	if def.Type != game.CardTypeFamiliar {
		return "-"
	}
	return fmt.Sprintf("%d/%d", def.Power, def.Toughness)
}

func elements(def *game.CardDefinition) string {
	if len(def.Elements) == 0 {
		return "-"
	}
	names := make([]string, len(def.Elements))
	for i, el := range def.Elements {
		names[i] = string(el)
	}
	return strings.Join(names, ",")
}

func abilities(def *game.CardDefinition) string {
	if len(def.Abilities) == 0 {
		return "-"
	}
	names := make([]string, len(def.Abilities))
	for i, ab := range def.Abilities {
		names[i] = ab.ID
		if ab.Kind == game.AbilityBurst {
			names[i] += " (burst)"
		}
	}
	return strings.Join(names, ", ")
}

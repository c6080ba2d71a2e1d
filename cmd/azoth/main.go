package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thraizz/azoth-server-go/internal/catalog"
	"github.com/thraizz/azoth-server-go/internal/config"
	"github.com/thraizz/azoth-server-go/internal/game"
)

var version = "dev" // set via ldflags during build

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions carries global flags and what PersistentPreRunE builds from
// them.
type rootOptions struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "azoth",
		Short:         "Azoth card game rules engine",
		Long:          "Run self-play simulations and deck leagues, stream games to spectators and manage the card catalog.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (defaults and AZOTH_* environment when empty)")

	cmd.AddCommand(newSimulateCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newLeagueCommand(opts))
	cmd.AddCommand(newCardsCommand(opts))
	return cmd
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// loadCatalog reads the configured card source.
func (o *rootOptions) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	switch o.cfg.Catalog.Source {
	case "postgres":
		pool, err := catalog.Connect(ctx, o.cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return catalog.NewPostgresSource(pool, o.logger).Load(ctx)
	default:
		cat, err := catalog.LoadFile(o.cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("catalog loaded", zap.String("path", o.cfg.Catalog.Path), zap.Int("cards", len(cat.Cards())))
		return cat, nil
	}
}

func (o *rootOptions) rules() game.RulesConfig {
	r := o.cfg.Rules
	return game.RulesConfig{
		LifeCards:            r.LifeCards,
		HandSize:             r.HandSize,
		LogCapacity:          r.LogCapacity,
		MaxResolutionDepth:   r.MaxResolutionDepth,
		PowerDamageToPlayers: r.PowerDamage,
	}
}

// setups seats two players with the named decks; an empty name picks the
// catalog's first deck.
func setups(cat *catalog.Catalog, deckA, deckB string) ([]game.PlayerSetup, error) {
	decks := cat.Decks()
	if len(decks) == 0 {
		return nil, fmt.Errorf("catalog has no decks")
	}
	if deckA == "" {
		deckA = decks[0]
	}
	if deckB == "" {
		deckB = decks[len(decks)-1]
	}

	a, err := cat.Setup(deckA, "Player A")
	if err != nil {
		return nil, err
	}
	b, err := cat.Setup(deckB, "Player B")
	if err != nil {
		return nil, err
	}
	return []game.PlayerSetup{a, b}, nil
}

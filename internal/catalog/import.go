package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of cards written per transaction.
const DefaultBatchSize = 500

// ImportOptions tunes Import.
type ImportOptions struct {
	BatchSize int
	// Replace truncates the catalog tables before writing.
	Replace bool
}

// ImportStats reports the outcome of an import.
type ImportStats struct {
	Cards    int
	Decks    int
	Failed   int
	Duration time.Duration
}

const (
	upsertCard = `
		INSERT INTO cards (name, card_type, cost, elements, power, toughness, effect)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			card_type = EXCLUDED.card_type, cost = EXCLUDED.cost, elements = EXCLUDED.elements,
			power = EXCLUDED.power, toughness = EXCLUDED.toughness, effect = EXCLUDED.effect`
	deleteAbilities = `DELETE FROM card_abilities WHERE card_name = $1`
	insertAbility   = `
		INSERT INTO card_abilities (card_name, ability_id, name, kind, cost, effect, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	upsertDeck      = `INSERT INTO decks (name, flag) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET flag = EXCLUDED.flag`
	deleteDeckCards = `DELETE FROM deck_cards WHERE deck_name = $1`
	insertDeckCard  = `INSERT INTO deck_cards (deck_name, card_name, count, position) VALUES ($1, $2, $3, $4)`
	truncateCatalog = `TRUNCATE deck_cards, decks, card_abilities, cards`
)

// Import writes the catalog into the database in batched transactions.
// A batch whose statements fail is rolled back and counted as failed;
// later batches still run. Decks are written after all cards.
func Import(ctx context.Context, db TxBeginner, cat *Catalog, opts ImportOptions, logger *zap.Logger) (ImportStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	start := time.Now()
	var stats ImportStats

	if opts.Replace {
		if err := inTx(ctx, db, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, truncateCatalog)
			return err
		}); err != nil {
			return stats, fmt.Errorf("failed to clear catalog: %w", err)
		}
		logger.Info("existing catalog cleared")
	}

	cards := cat.RawCards()
	for i := 0; i < len(cards); i += batchSize {
		end := min(i+batchSize, len(cards))
		batch := cards[i:end]

		err := inTx(ctx, db, func(tx pgx.Tx) error {
			for _, card := range batch {
				if err := writeCard(ctx, tx, card); err != nil {
					return fmt.Errorf("card %q: %w", card.Name, err)
				}
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warn("card batch failed", zap.Int("offset", i), zap.Int("size", len(batch)), zap.Error(err))
			stats.Failed += len(batch)
			continue
		}
		stats.Cards += len(batch)
		logger.Debug("card batch imported", zap.Int("imported", stats.Cards), zap.Int("total", len(cards)))
	}

	for _, deck := range cat.RawDecks() {
		err := inTx(ctx, db, func(tx pgx.Tx) error {
			return writeDeck(ctx, tx, deck)
		})
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warn("deck import failed", zap.String("deck", deck.Name), zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Decks++
	}

	stats.Duration = time.Since(start)
	logger.Info("catalog import complete",
		zap.Int("cards", stats.Cards),
		zap.Int("decks", stats.Decks),
		zap.Int("failed", stats.Failed),
		zap.Duration("took", stats.Duration),
	)
	return stats, nil
}

func writeCard(ctx context.Context, tx pgx.Tx, card Card) error {
	elements := card.Elements
	if elements == nil {
		elements = []string{}
	}
	if _, err := tx.Exec(ctx, upsertCard,
		card.Name, card.Type, card.Cost, elements, card.Power, card.Toughness, card.Effect,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteAbilities, card.Name); err != nil {
		return err
	}
	for pos, ab := range card.Abilities {
		kind := ab.Kind
		if kind == "" {
			kind = "activated"
		}
		if _, err := tx.Exec(ctx, insertAbility,
			card.Name, ab.ID, ab.Name, kind, ab.Cost, ab.Effect, pos,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeDeck(ctx context.Context, tx pgx.Tx, deck Deck) error {
	if _, err := tx.Exec(ctx, upsertDeck, deck.Name, deck.Flag); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteDeckCards, deck.Name); err != nil {
		return err
	}
	for pos, entry := range deck.Cards {
		if _, err := tx.Exec(ctx, insertDeckCard, deck.Name, entry.Card, entry.Count, pos); err != nil {
			return err
		}
	}
	return nil
}

func inTx(ctx context.Context, db TxBeginner, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

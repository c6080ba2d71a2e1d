package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema creates the catalog tables.
const Schema = `
CREATE TABLE IF NOT EXISTS cards (
	name       TEXT PRIMARY KEY,
	card_type  TEXT NOT NULL,
	cost       TEXT NOT NULL DEFAULT '',
	elements   TEXT[] NOT NULL DEFAULT '{}',
	power      INTEGER NOT NULL DEFAULT 0,
	toughness  INTEGER NOT NULL DEFAULT 0,
	effect     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS card_abilities (
	card_name  TEXT NOT NULL REFERENCES cards(name) ON DELETE CASCADE,
	ability_id TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL DEFAULT 'activated',
	cost       TEXT NOT NULL DEFAULT '',
	effect     TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (card_name, ability_id)
);
CREATE TABLE IF NOT EXISTS decks (
	name TEXT PRIMARY KEY,
	flag TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS deck_cards (
	deck_name TEXT NOT NULL REFERENCES decks(name) ON DELETE CASCADE,
	card_name TEXT NOT NULL REFERENCES cards(name),
	count     INTEGER NOT NULL,
	position  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (deck_name, card_name)
);
`

const (
	selectCards     = `SELECT name, card_type, cost, elements, power, toughness, effect FROM cards ORDER BY name`
	selectAbilities = `SELECT card_name, ability_id, name, kind, cost, effect FROM card_abilities ORDER BY card_name, position`
	selectDecks     = `SELECT name, flag FROM decks ORDER BY name`
	selectDeckCards = `SELECT deck_name, card_name, count FROM deck_cards ORDER BY deck_name, position`
)

// Querier runs read queries. *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TxBeginner opens transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Execer runs statements without results.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Connect opens a pool and checks the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates missing catalog tables.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// PostgresSource reads a catalog from the database.
type PostgresSource struct {
	db     Querier
	logger *zap.Logger
}

// NewPostgresSource creates a source reading through db.
func NewPostgresSource(db Querier, logger *zap.Logger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSource{db: db, logger: logger}
}

// Load reads every card and deck and validates them into a catalog.
func (s *PostgresSource) Load(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	cards, err := s.loadCards(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := s.loadDecks(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := New(cards, decks)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog in database: %w", err)
	}
	s.logger.Info("catalog loaded from database",
		zap.Int("cards", len(cards)),
		zap.Int("decks", len(decks)),
		zap.Duration("took", time.Since(start)),
	)
	return cat, nil
}

func (s *PostgresSource) loadCards(ctx context.Context) ([]Card, error) {
	rows, err := s.db.Query(ctx, selectCards)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	index := make(map[string]int)
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.Name, &c.Type, &c.Cost, &c.Elements, &c.Power, &c.Toughness, &c.Effect); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		index[c.Name] = len(cards)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}

	abRows, err := s.db.Query(ctx, selectAbilities)
	if err != nil {
		return nil, fmt.Errorf("failed to query abilities: %w", err)
	}
	defer abRows.Close()

	for abRows.Next() {
		var cardName string
		var ab Ability
		if err := abRows.Scan(&cardName, &ab.ID, &ab.Name, &ab.Kind, &ab.Cost, &ab.Effect); err != nil {
			return nil, fmt.Errorf("failed to scan ability: %w", err)
		}
		i, ok := index[cardName]
		if !ok {
			s.logger.Warn("ability for unknown card", zap.String("card", cardName), zap.String("ability", ab.ID))
			continue
		}
		cards[i].Abilities = append(cards[i].Abilities, ab)
	}
	if err := abRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read abilities: %w", err)
	}
	return cards, nil
}

func (s *PostgresSource) loadDecks(ctx context.Context) ([]Deck, error) {
	rows, err := s.db.Query(ctx, selectDecks)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	index := make(map[string]int)
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.Name, &d.Flag); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		index[d.Name] = len(decks)
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decks: %w", err)
	}

	entryRows, err := s.db.Query(ctx, selectDeckCards)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck cards: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var deckName string
		var entry DeckEntry
		if err := entryRows.Scan(&deckName, &entry.Card, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		i, ok := index[deckName]
		if !ok {
			s.logger.Warn("entry for unknown deck", zap.String("deck", deckName), zap.String("card", entry.Card))
			continue
		}
		decks[i].Cards = append(decks[i].Cards, entry)
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deck cards: %w", err)
	}
	return decks, nil
}

package sim

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thraizz/azoth-server-go/internal/game"
)

// Points awarded per match.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// DeckSource seats players by deck name. *catalog.Catalog satisfies it.
type DeckSource interface {
	Decks() []string
	Setup(deckName, playerName string) (game.PlayerSetup, error)
}

// Standing is one deck's record in a league.
type Standing struct {
	Deck   string
	Points int
	Wins   int
	Losses int
	Draws  int
}

// Played returns the number of matches the deck played.
func (s Standing) Played() int {
	return s.Wins + s.Losses + s.Draws
}

// Match is one game between two decks. Home takes the first seat.
type Match struct {
	Home   string
	Away   string
	Seed   uint64
	Winner string // empty for a draw
	Turns  int
}

// LeagueResult holds every match and the final table.
type LeagueResult struct {
	Matches   []Match
	Standings []Standing
}

// League plays every deck against every other deck from both seats.
type League struct {
	logger   *zap.Logger
	source   DeckSource
	rules    game.RulesConfig
	games    int
	seed     uint64
	maxTurns int
	workers  int
}

// LeagueOption configures a League.
type LeagueOption func(*League)

// WithGames sets how many games each ordered pairing plays.
func WithGames(n int) LeagueOption {
	return func(l *League) {
		if n > 0 {
			l.games = n
		}
	}
}

// WithLeagueSeed sets the seed of the first match; later matches count up.
func WithLeagueSeed(seed uint64) LeagueOption {
	return func(l *League) { l.seed = seed }
}

// WithLeagueRules sets the rules every match is played with.
func WithLeagueRules(cfg game.RulesConfig) LeagueOption {
	return func(l *League) { l.rules = cfg }
}

// WithLeagueMaxTurns sets the turn limit after which a match is a draw.
func WithLeagueMaxTurns(n int) LeagueOption {
	return func(l *League) {
		if n > 0 {
			l.maxTurns = n
		}
	}
}

// WithWorkers bounds how many matches run at once.
func WithWorkers(n int) LeagueOption {
	return func(l *League) {
		if n > 0 {
			l.workers = n
		}
	}
}

// NewLeague creates a league over every deck in source.
func NewLeague(logger *zap.Logger, source DeckSource, opts ...LeagueOption) *League {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &League{
		logger:   logger,
		source:   source,
		games:    1,
		seed:     1,
		maxTurns: DefaultMaxTurns,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Schedule returns the matches the league will play, in order.
func (l *League) Schedule() ([]Match, error) {
	decks := l.source.Decks()
	if len(decks) < 2 {
		return nil, fmt.Errorf("a league needs at least 2 decks, have %d", len(decks))
	}

	var matches []Match
	seed := l.seed
	for _, home := range decks {
		for _, away := range decks {
			if home == away {
				continue
			}
			for range l.games {
				matches = append(matches, Match{Home: home, Away: away, Seed: seed})
				seed++
			}
		}
	}
	return matches, nil
}

// Play runs the schedule and tallies the standings.
func (l *League) Play(ctx context.Context) (*LeagueResult, error) {
	matches, err := l.Schedule()
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i := range matches {
		g.Go(func() error {
			return l.play(ctx, &matches[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &LeagueResult{Matches: matches, Standings: Standings(matches)}
	l.logger.Info("league finished",
		zap.Int("matches", len(matches)),
		zap.String("leader", res.Standings[0].Deck),
		zap.Int("points", res.Standings[0].Points),
	)
	return res, nil
}

func (l *League) play(ctx context.Context, m *Match) error {
	home, err := l.source.Setup(m.Home, m.Home)
	if err != nil {
		return err
	}
	away, err := l.source.Setup(m.Away, m.Away)
	if err != nil {
		return err
	}

	logger := l.logger.With(zap.String("home", m.Home), zap.String("away", m.Away), zap.Uint64("seed", m.Seed))
	e := game.NewEngine(
		game.WithSeed(m.Seed),
		game.WithRules(l.rules),
		game.WithResolver(KeywordResolver{}),
		game.WithLogger(logger),
	)
	if err := e.InitializeGame([]game.PlayerSetup{home, away}); err != nil {
		return fmt.Errorf("%s vs %s: %w", m.Home, m.Away, err)
	}
	if err := e.StartGame(); err != nil {
		return fmt.Errorf("%s vs %s: %w", m.Home, m.Away, err)
	}

	res, err := NewRunner(logger, WithMaxTurns(l.maxTurns)).Run(ctx, e)
	switch {
	case errors.Is(err, ErrTurnLimit):
	case err != nil:
		return fmt.Errorf("%s vs %s (seed %d): %w", m.Home, m.Away, m.Seed, err)
	case *res.Winner == 0:
		m.Winner = m.Home
	default:
		m.Winner = m.Away
	}
	m.Turns = res.Turns
	return nil
}

// Standings tallies matches into a table ordered by points, then wins, then
// deck name.
func Standings(matches []Match) []Standing {
	byDeck := make(map[string]*Standing)
	get := func(deck string) *Standing {
		s, ok := byDeck[deck]
		if !ok {
			s = &Standing{Deck: deck}
			byDeck[deck] = s
		}
		return s
	}

	for _, m := range matches {
		home, away := get(m.Home), get(m.Away)
		switch m.Winner {
		case m.Home:
			home.Wins++
			home.Points += PointsWin
			away.Losses++
		case m.Away:
			away.Wins++
			away.Points += PointsWin
			home.Losses++
		default:
			home.Draws++
			home.Points += PointsDraw
			away.Draws++
			away.Points += PointsDraw
		}
	}

	out := make([]Standing, 0, len(byDeck))
	for _, s := range byDeck {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Standing) int {
		return cmp.Or(
			cmp.Compare(b.Points, a.Points),
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(a.Deck, b.Deck),
		)
	})
	return out
}

// Package catalog loads card definitions and decks from YAML files or a
// PostgreSQL database and turns them into engine definitions.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thraizz/azoth-server-go/internal/game"
	"github.com/thraizz/azoth-server-go/internal/game/azoth"
)

// Card is the stored form of a card definition.
type Card struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Cost      string    `yaml:"cost,omitempty"`
	Elements  []string  `yaml:"elements,omitempty"`
	Power     int       `yaml:"power,omitempty"`
	Toughness int       `yaml:"toughness,omitempty"`
	Effect    string    `yaml:"effect,omitempty"`
	Abilities []Ability `yaml:"abilities,omitempty"`
}

// Ability is the stored form of a card ability.
type Ability struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	Kind   string `yaml:"kind,omitempty"`
	Cost   string `yaml:"cost,omitempty"`
	Effect string `yaml:"effect,omitempty"`
}

// Deck is a named list of card names with counts.
type Deck struct {
	Name  string      `yaml:"name"`
	Flag  string      `yaml:"flag,omitempty"`
	Cards []DeckEntry `yaml:"cards"`
}

// DeckEntry is count copies of one card.
type DeckEntry struct {
	Card  string `yaml:"card"`
	Count int    `yaml:"count"`
}

// Size returns the number of cards in the deck.
func (d Deck) Size() int {
	n := 0
	for _, e := range d.Cards {
		n += e.Count
	}
	return n
}

type file struct {
	Cards []Card `yaml:"cards"`
	Decks []Deck `yaml:"decks"`
}

// Catalog holds validated card definitions and the decks built from them.
type Catalog struct {
	cards map[string]Card
	defs  map[string]*game.CardDefinition
	decks map[string]Deck
}

// New validates cards and decks and builds a catalog. Card names are
// matched case-insensitively.
func New(cards []Card, decks []Deck) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[string]Card, len(cards)),
		defs:  make(map[string]*game.CardDefinition, len(cards)),
		decks: make(map[string]Deck, len(decks)),
	}

	var errs []error
	for _, card := range cards {
		key := normalize(card.Name)
		if key == "" {
			errs = append(errs, errors.New("card with empty name"))
			continue
		}
		if _, dup := c.defs[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate card %q", card.Name))
			continue
		}
		def, err := card.Definition()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.cards[key] = card
		c.defs[key] = def
	}

	for _, deck := range decks {
		key := normalize(deck.Name)
		if key == "" {
			errs = append(errs, errors.New("deck with empty name"))
			continue
		}
		if _, dup := c.decks[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate deck %q", deck.Name))
			continue
		}
		for _, entry := range deck.Cards {
			if _, ok := c.defs[normalize(entry.Card)]; !ok {
				errs = append(errs, fmt.Errorf("deck %q: unknown card %q", deck.Name, entry.Card))
			}
			if entry.Count < 1 {
				errs = append(errs, fmt.Errorf("deck %q: card %q has count %d", deck.Name, entry.Card, entry.Count))
			}
		}
		c.decks[key] = deck
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse reads a YAML catalog document. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Cards, f.Decks)
}

// LoadFile reads and parses a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Marshal renders the catalog back to YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	f := file{Cards: c.RawCards(), Decks: c.RawDecks()}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Card returns the definition of the named card.
func (c *Catalog) Card(name string) (*game.CardDefinition, bool) {
	def, ok := c.defs[normalize(name)]
	return def, ok
}

// Cards returns every definition ordered by name.
func (c *Catalog) Cards() []*game.CardDefinition {
	out := make([]*game.CardDefinition, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b *game.CardDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// RawCards returns the stored card records ordered by name.
func (c *Catalog) RawCards() []Card {
	out := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, card)
	}
	slices.SortFunc(out, func(a, b Card) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// RawDecks returns the stored decks ordered by name.
func (c *Catalog) RawDecks() []Deck {
	out := make([]Deck, 0, len(c.decks))
	for _, d := range c.decks {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Deck) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Decks returns the deck names in order.
func (c *Catalog) Decks() []string {
	names := make([]string, 0, len(c.decks))
	for _, d := range c.decks {
		names = append(names, d.Name)
	}
	slices.Sort(names)
	return names
}

// Deck expands the named deck into one definition per card copy.
func (c *Catalog) Deck(name string) ([]*game.CardDefinition, error) {
	deck, ok := c.decks[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("unknown deck %q", name)
	}
	out := make([]*game.CardDefinition, 0, deck.Size())
	for _, entry := range deck.Cards {
		def := c.defs[normalize(entry.Card)]
		for range entry.Count {
			out = append(out, def)
		}
	}
	return out, nil
}

// Setup builds a player seat from the named deck.
func (c *Catalog) Setup(deckName, playerName string) (game.PlayerSetup, error) {
	defs, err := c.Deck(deckName)
	if err != nil {
		return game.PlayerSetup{}, err
	}
	deck := c.decks[normalize(deckName)]
	return game.PlayerSetup{Name: playerName, Flag: deck.Flag, Deck: defs}, nil
}

// Definition converts the stored card into an engine definition.
func (card Card) Definition() (*game.CardDefinition, error) {
	typ, err := game.ParseCardType(card.Type)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", card.Name, err)
	}
	cost, err := azoth.ParseCost(card.Cost)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", card.Name, err)
	}
	def := &game.CardDefinition{
		Name:      card.Name,
		Type:      typ,
		Cost:      cost,
		Power:     card.Power,
		Toughness: card.Toughness,
		Effect:    card.Effect,
	}
	for _, name := range card.Elements {
		el, err := azoth.ParseElement(name)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", card.Name, err)
		}
		def.Elements = append(def.Elements, el)
	}
	if typ == game.CardTypeFamiliar && card.Toughness < 1 {
		return nil, fmt.Errorf("card %q: familiar needs toughness of at least 1", card.Name)
	}

	seen := make(map[string]bool, len(card.Abilities))
	for _, ab := range card.Abilities {
		if ab.ID == "" {
			return nil, fmt.Errorf("card %q: ability without id", card.Name)
		}
		if seen[ab.ID] {
			return nil, fmt.Errorf("card %q: duplicate ability %q", card.Name, ab.ID)
		}
		seen[ab.ID] = true

		kind, err := game.ParseAbilityKind(ab.Kind)
		if err != nil {
			return nil, fmt.Errorf("card %q ability %q: %w", card.Name, ab.ID, err)
		}
		abCost, err := azoth.ParseCost(ab.Cost)
		if err != nil {
			return nil, fmt.Errorf("card %q ability %q: %w", card.Name, ab.ID, err)
		}
		def.Abilities = append(def.Abilities, game.Ability{
			ID:     ab.ID,
			Name:   ab.Name,
			Kind:   kind,
			Cost:   abCost,
			Effect: ab.Effect,
		})
	}
	return def, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

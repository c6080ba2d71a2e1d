package game

import "fmt"

// ZoneKind names a per-player card container.
type ZoneKind int

const (
	ZoneDeck ZoneKind = iota
	ZoneHand
	ZoneLifeCards
	ZoneField
	ZoneResourceRow
	ZoneGraveyard
	ZoneRemoved
	// ZoneStack is the shared resolution stack; cards there are held by a
	// stack item rather than a Pile.
	ZoneStack
)

var zoneNames = map[ZoneKind]string{
	ZoneDeck:        "deck",
	ZoneHand:        "hand",
	ZoneLifeCards:   "life-cards",
	ZoneField:       "field",
	ZoneResourceRow: "resource-row",
	ZoneGraveyard:   "graveyard",
	ZoneRemoved:     "removed",
	ZoneStack:       "stack",
}

func (z ZoneKind) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// playerZones lists the zones every player owns, in a fixed order.
var playerZones = []ZoneKind{
	ZoneDeck,
	ZoneHand,
	ZoneLifeCards,
	ZoneField,
	ZoneResourceRow,
	ZoneGraveyard,
	ZoneRemoved,
}

// Pile is an ordered list of cards. For the deck index 0 is the top; for
// life-cards the last element is the top.
type Pile []*Card

// Len returns the number of cards.
func (p Pile) Len() int {
	return len(p)
}

// Find returns the card with the given id and its index.
func (p Pile) Find(id string) (*Card, int) {
	for i, c := range p {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// Contains reports whether a card with the id is present.
func (p Pile) Contains(id string) bool {
	_, idx := p.Find(id)
	return idx >= 0
}

// IDs returns the card ids in order.
func (p Pile) IDs() []string {
	ids := make([]string, len(p))
	for i, c := range p {
		ids[i] = c.ID
	}
	return ids
}

// Add appends a card.
func (p *Pile) Add(c *Card) {
	*p = append(*p, c)
}

// Take removes and returns the card with the given id.
func (p *Pile) Take(id string) (*Card, bool) {
	c, idx := p.Find(id)
	if idx < 0 {
		return nil, false
	}
	*p = append((*p)[:idx:idx], (*p)[idx+1:]...)
	return c, true
}

// TakeFirst removes and returns the first card.
func (p *Pile) TakeFirst() (*Card, bool) {
	if len(*p) == 0 {
		return nil, false
	}
	c := (*p)[0]
	*p = (*p)[1:]
	return c, true
}

// TakeLast removes and returns the last card.
func (p *Pile) TakeLast() (*Card, bool) {
	n := len(*p)
	if n == 0 {
		return nil, false
	}
	c := (*p)[n-1]
	*p = (*p)[:n-1]
	return c, true
}

// Clone deep-copies every card.
func (p Pile) Clone() Pile {
	if p == nil {
		return nil
	}
	cpy := make(Pile, len(p))
	for i, c := range p {
		cpy[i] = c.Clone()
	}
	return cpy
}

// Zone returns a pointer to one of the player's piles.
func (pl *Player) Zone(kind ZoneKind) *Pile {
	switch kind {
	case ZoneDeck:
		return &pl.Deck
	case ZoneHand:
		return &pl.Hand
	case ZoneLifeCards:
		return &pl.LifeCards
	case ZoneField:
		return &pl.Field
	case ZoneResourceRow:
		return &pl.ResourceRow
	case ZoneGraveyard:
		return &pl.Graveyard
	case ZoneRemoved:
		return &pl.Removed
	default:
		panic(fmt.Sprintf("game: player has no %s zone", kind))
	}
}

// Locate finds which of the player's zones holds the card.
func (pl *Player) Locate(id string) (ZoneKind, *Card, bool) {
	for _, kind := range playerZones {
		if c, idx := pl.Zone(kind).Find(id); idx >= 0 {
			return kind, c, true
		}
	}
	return 0, nil, false
}

// move transfers a card between two of the player's zones.
func (pl *Player) move(id string, from, to ZoneKind) (*Card, error) {
	c, ok := pl.Zone(from).Take(id)
	if !ok {
		return nil, fmt.Errorf("card %s not in %s", id, from)
	}
	pl.Zone(to).Add(c)
	return c, nil
}

package game

import (
	"fmt"
	"strings"

	"github.com/thraizz/azoth-server-go/internal/game/azoth"
	"github.com/thraizz/azoth-server-go/internal/game/counters"
)

// CardType is the static type of a card.
type CardType int

const (
	CardTypeOther CardType = iota
	CardTypeFamiliar
	CardTypeSpell
)

var cardTypeNames = map[CardType]string{
	CardTypeOther:    "other",
	CardTypeFamiliar: "familiar",
	CardTypeSpell:    "spell",
}

func (t CardType) String() string {
	if name, ok := cardTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("cardtype(%d)", int(t))
}

// ParseCardType resolves a card type by name.
func ParseCardType(name string) (CardType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range cardTypeNames {
		if n == name {
			return t, nil
		}
	}
	return CardTypeOther, fmt.Errorf("unknown card type %q", name)
}

// AbilityKind distinguishes abilities the engine itself recognizes.
type AbilityKind int

const (
	// AbilityActivated is used by its controller paying Cost.
	AbilityActivated AbilityKind = iota
	// AbilityBurst lets the card be played for free when revealed from
	// the life-cards as damage.
	AbilityBurst
)

func (k AbilityKind) String() string {
	switch k {
	case AbilityActivated:
		return "activated"
	case AbilityBurst:
		return "burst"
	default:
		return fmt.Sprintf("ability(%d)", int(k))
	}
}

// ParseAbilityKind resolves an ability kind by name.
func ParseAbilityKind(name string) (AbilityKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "activated", "":
		return AbilityActivated, nil
	case "burst":
		return AbilityBurst, nil
	default:
		return AbilityActivated, fmt.Errorf("unknown ability kind %q", name)
	}
}

// Ability is one entry of a card's ability list. Effect is opaque to the
// engine and interpreted by the EffectResolver.
type Ability struct {
	ID     string
	Name   string
	Kind   AbilityKind
	Cost   azoth.Cost
	Effect string
}

// CardDefinition is the static, shared description of a card.
type CardDefinition struct {
	Name      string
	Type      CardType
	Cost      azoth.Cost
	Elements  []azoth.Element
	Power     int
	Toughness int
	Abilities []Ability
	Effect    string
}

// Burst returns the card's burst ability, if any.
func (d *CardDefinition) Burst() (Ability, bool) {
	for _, ab := range d.Abilities {
		if ab.Kind == AbilityBurst {
			return ab, true
		}
	}
	return Ability{}, false
}

// HasBurst reports whether the card carries a burst ability.
func (d *CardDefinition) HasBurst() bool {
	_, ok := d.Burst()
	return ok
}

// Ability looks up an ability by id.
func (d *CardDefinition) Ability(id string) (Ability, bool) {
	for _, ab := range d.Abilities {
		if ab.ID == id {
			return ab, true
		}
	}
	return Ability{}, false
}

// Card is one physical card in a game: a definition plus the mutable state
// it picks up while moving between zones.
type Card struct {
	ID                string
	Owner             int
	Def               *CardDefinition
	Tapped            bool
	SummoningSickness bool
	Counters          *counters.Counters
	Damage            int
	Attacking         bool
	BlockedBy         string
	Blocking          string
	FaceDown          bool
}

func newCard(id string, owner int, def *CardDefinition) *Card {
	return &Card{
		ID:       id,
		Owner:    owner,
		Def:      def,
		Counters: counters.NewCounters(),
	}
}

// Name returns the definition's name.
func (c *Card) Name() string {
	return c.Def.Name
}

// IsFamiliar reports whether the card is a Familiar.
func (c *Card) IsFamiliar() bool {
	return c.Def.Type == CardTypeFamiliar
}

// Power returns base power plus counter modifications, never negative.
func (c *Card) Power() int {
	boost, _ := c.Counters.Boost()
	return max(c.Def.Power+boost, 0)
}

// Toughness returns base toughness plus counter modifications.
func (c *Card) Toughness() int {
	_, boost := c.Counters.Boost()
	return c.Def.Toughness + boost
}

// Elements returns the card's element tags.
func (c *Card) Elements() []azoth.Element {
	return c.Def.Elements
}

func (c *Card) clearCombat() {
	c.Damage = 0
	c.Attacking = false
	c.BlockedBy = ""
	c.Blocking = ""
}

// reset strips state a card does not keep when it leaves play.
func (c *Card) reset() {
	c.clearCombat()
	c.Tapped = false
	c.SummoningSickness = false
	c.FaceDown = false
	c.Counters.Clear()
}

// Clone copies the card. The definition is shared; it is never mutated.
func (c *Card) Clone() *Card {
	cpy := *c
	cpy.Counters = c.Counters.Copy()
	return &cpy
}

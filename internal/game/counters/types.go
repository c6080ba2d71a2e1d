package counters

// CounterType names a kind of counter.
type CounterType string

const (
	// Strength counters come from overpaying a Familiar's summon cost.
	// Each is +1/+1.
	Strength CounterType = "strength"
	// Weakness counters are placed by effects; each is -1/-1.
	Weakness CounterType = "weakness"
	// Charge counters carry no stat change.
	Charge CounterType = "charge"
)

var boosts = map[CounterType][2]int{
	Strength: {1, 1},
	Weakness: {-1, -1},
}

// Boost returns the power/toughness change of one counter of this type.
func (t CounterType) Boost() (power, toughness int) {
	b := boosts[t]
	return b[0], b[1]
}

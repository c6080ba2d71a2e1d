package counters

// Counter is a named tally placed on a card.
type Counter struct {
	Name  CounterType
	Count int
}

// Counters manages the counters on a single card.
type Counters struct {
	Counters map[CounterType]*Counter
}

// NewCounters creates an empty collection.
func NewCounters() *Counters {
	return &Counters{Counters: make(map[CounterType]*Counter)}
}

// Add places amount counters of the given type. Non-positive amounts are
// ignored.
func (c *Counters) Add(name CounterType, amount int) {
	if amount <= 0 {
		return
	}
	if c.Counters == nil {
		c.Counters = make(map[CounterType]*Counter)
	}
	if existing, ok := c.Counters[name]; ok {
		existing.Count += amount
		return
	}
	c.Counters[name] = &Counter{Name: name, Count: amount}
}

// Remove takes away up to amount counters and reports how many were
// removed. A counter that reaches zero is dropped.
func (c *Counters) Remove(name CounterType, amount int) int {
	existing, ok := c.Counters[name]
	if !ok || amount <= 0 {
		return 0
	}
	if amount > existing.Count {
		amount = existing.Count
	}
	existing.Count -= amount
	if existing.Count == 0 {
		delete(c.Counters, name)
	}
	return amount
}

// Count returns the number of counters of the given type.
func (c *Counters) Count(name CounterType) int {
	if c == nil {
		return 0
	}
	if existing, ok := c.Counters[name]; ok {
		return existing.Count
	}
	return 0
}

// IsEmpty reports whether no counters are present.
func (c *Counters) IsEmpty() bool {
	return c == nil || len(c.Counters) == 0
}

// Clear removes all counters.
func (c *Counters) Clear() {
	c.Counters = make(map[CounterType]*Counter)
}

// Boost returns the power and toughness modification granted by the
// counters present.
func (c *Counters) Boost() (power, toughness int) {
	if c == nil {
		return 0, 0
	}
	for name, counter := range c.Counters {
		p, t := name.Boost()
		power += p * counter.Count
		toughness += t * counter.Count
	}
	return power, toughness
}

// Copy creates a deep copy of the collection.
func (c *Counters) Copy() *Counters {
	cpy := NewCounters()
	if c == nil {
		return cpy
	}
	for name, counter := range c.Counters {
		cpy.Counters[name] = &Counter{Name: counter.Name, Count: counter.Count}
	}
	return cpy
}

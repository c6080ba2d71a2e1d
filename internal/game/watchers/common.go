package watchers

import (
	"sync"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// SpellsCastWatcher tracks spells cast by each player.
type SpellsCastWatcher struct {
	*rules.BaseWatcher
	mu         sync.RWMutex
	spellsCast [2][]string
}

// NewSpellsCastWatcher creates a new spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	return &SpellsCastWatcher{BaseWatcher: rules.NewBaseWatcher("SpellsCastWatcher")}
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	cast, ok := event.Payload.(rules.SpellCast)
	if !ok || !validPlayer(cast.Player) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spellsCast[cast.Player] = append(w.spellsCast[cast.Player], cast.CardID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SpellsCastWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.BaseWatcher.Reset()
	w.spellsCast = [2][]string{}
}

// SpellsCast returns the card ids of the spells a player has cast.
func (w *SpellsCastWatcher) SpellsCast(player int) []string {
	if !validPlayer(player) {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.spellsCast[player]...)
}

// Count returns the number of spells cast by a player.
func (w *SpellsCastWatcher) Count(player int) int {
	if !validPlayer(player) {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.spellsCast[player])
}

// FamiliarsDestroyedWatcher tracks Familiars that went from the field to a
// graveyard.
type FamiliarsDestroyedWatcher struct {
	*rules.BaseWatcher
	mu        sync.RWMutex
	byOwner   [2]int
	destroyed []string
}

// NewFamiliarsDestroyedWatcher creates a new familiars destroyed watcher.
func NewFamiliarsDestroyedWatcher() *FamiliarsDestroyedWatcher {
	return &FamiliarsDestroyedWatcher{BaseWatcher: rules.NewBaseWatcher("FamiliarsDestroyedWatcher")}
}

// Watch implements the Watcher interface.
func (w *FamiliarsDestroyedWatcher) Watch(event rules.Event) {
	d, ok := event.Payload.(rules.CreatureDestroyed)
	if !ok || !validPlayer(d.Owner) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.byOwner[d.Owner]++
	w.destroyed = append(w.destroyed, d.CardID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *FamiliarsDestroyedWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.BaseWatcher.Reset()
	w.byOwner = [2]int{}
	w.destroyed = nil
}

// AmountByOwner returns how many of a player's Familiars were destroyed.
func (w *FamiliarsDestroyedWatcher) AmountByOwner(owner int) int {
	if !validPlayer(owner) {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byOwner[owner]
}

// TotalAmount returns the number of Familiars destroyed this game.
func (w *FamiliarsDestroyedWatcher) TotalAmount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byOwner[0] + w.byOwner[1]
}

// LifeCardsLostWatcher tracks life-cards revealed by combat damage.
type LifeCardsLostWatcher struct {
	*rules.BaseWatcher
	mu   sync.RWMutex
	lost [2]int
}

// NewLifeCardsLostWatcher creates a new life-cards lost watcher.
func NewLifeCardsLostWatcher() *LifeCardsLostWatcher {
	return &LifeCardsLostWatcher{BaseWatcher: rules.NewBaseWatcher("LifeCardsLostWatcher")}
}

// Watch implements the Watcher interface.
func (w *LifeCardsLostWatcher) Watch(event rules.Event) {
	d, ok := event.Payload.(rules.CombatDamageResolved)
	if !ok || !validPlayer(d.Defender) || d.DamageToPlayer <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lost[d.Defender] += d.DamageToPlayer
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *LifeCardsLostWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.BaseWatcher.Reset()
	w.lost = [2]int{}
}

// Lost returns how many life-cards combat damage took from a player.
func (w *LifeCardsLostWatcher) Lost(player int) int {
	if !validPlayer(player) {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lost[player]
}

// Standard returns a registry holding one of each watcher above.
func Standard() *rules.WatcherRegistry {
	wr := rules.NewWatcherRegistry()
	wr.Add(NewSpellsCastWatcher())
	wr.Add(NewFamiliarsDestroyedWatcher())
	wr.Add(NewLifeCardsLostWatcher())
	return wr
}

func validPlayer(p int) bool {
	return p == 0 || p == 1
}

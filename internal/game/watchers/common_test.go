package watchers

import (
	"testing"
	"time"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

func event(payload rules.Payload) rules.Event {
	return rules.NewEvent(payload, 1, rules.PhaseMain, time.Unix(0, 0))
}

func TestSpellsCastWatcher(t *testing.T) {
	watcher := NewSpellsCastWatcher()

	if watcher.ConditionMet() {
		t.Fatal("watcher should not have condition met initially")
	}
	if watcher.Count(0) != 0 {
		t.Fatalf("expected 0 spells cast, got %d", watcher.Count(0))
	}

	watcher.Watch(event(rules.SpellCast{Player: 0, CardID: "spell1"}))
	if !watcher.ConditionMet() {
		t.Fatal("watcher should have condition met after spell cast")
	}
	if watcher.Count(0) != 1 {
		t.Fatalf("expected 1 spell cast, got %d", watcher.Count(0))
	}

	watcher.Watch(event(rules.SpellCast{Player: 0, CardID: "spell2"}))
	if got := watcher.SpellsCast(0); len(got) != 2 || got[1] != "spell2" {
		t.Fatalf("unexpected spells cast: %v", got)
	}
	if watcher.Count(1) != 0 {
		t.Fatalf("player 1 cast nothing, got %d", watcher.Count(1))
	}

	watcher.Watch(event(rules.ResourcePlaced{Player: 0, CardID: "r1"}))
	if watcher.Count(0) != 2 {
		t.Fatal("non-spell events must be ignored")
	}

	watcher.Reset()
	if watcher.ConditionMet() {
		t.Fatal("condition should be cleared after reset")
	}
	if watcher.Count(0) != 0 {
		t.Fatalf("expected 0 spells after reset, got %d", watcher.Count(0))
	}
}

func TestFamiliarsDestroyedWatcher(t *testing.T) {
	watcher := NewFamiliarsDestroyedWatcher()

	watcher.Watch(event(rules.CreatureDestroyed{Owner: 1, CardID: "f1", Name: "Ember Fox"}))
	watcher.Watch(event(rules.CreatureDestroyed{Owner: 1, CardID: "f2", Name: "Tide Wisp"}))
	watcher.Watch(event(rules.CreatureDestroyed{Owner: 0, CardID: "f3", Name: "Stone Golem"}))

	if watcher.AmountByOwner(1) != 2 {
		t.Fatalf("expected 2 for player 1, got %d", watcher.AmountByOwner(1))
	}
	if watcher.AmountByOwner(0) != 1 {
		t.Fatalf("expected 1 for player 0, got %d", watcher.AmountByOwner(0))
	}
	if watcher.TotalAmount() != 3 {
		t.Fatalf("expected 3 total, got %d", watcher.TotalAmount())
	}
	if watcher.AmountByOwner(5) != 0 {
		t.Fatal("unknown seat should report zero")
	}
}

func TestLifeCardsLostWatcher(t *testing.T) {
	watcher := NewLifeCardsLostWatcher()

	watcher.Watch(event(rules.CombatDamageResolved{Attacker: 0, Defender: 1, DamageToPlayer: 0}))
	if watcher.ConditionMet() {
		t.Fatal("combat without player damage should not meet the condition")
	}

	watcher.Watch(event(rules.CombatDamageResolved{Attacker: 0, Defender: 1, DamageToPlayer: 2}))
	watcher.Watch(event(rules.CombatDamageResolved{Attacker: 1, Defender: 0, DamageToPlayer: 1}))
	if watcher.Lost(1) != 2 || watcher.Lost(0) != 1 {
		t.Fatalf("unexpected losses: p0=%d p1=%d", watcher.Lost(0), watcher.Lost(1))
	}
}

func TestStandardRegistry(t *testing.T) {
	wr := Standard()
	bus := rules.NewEventBus()
	bus.Subscribe(wr.Notify)

	bus.Publish(event(rules.SpellCast{Player: 1, CardID: "s"}))

	spells, ok := wr.Get("SpellsCastWatcher").(*SpellsCastWatcher)
	if !ok {
		t.Fatal("registry should hold a SpellsCastWatcher")
	}
	if spells.Count(1) != 1 {
		t.Fatalf("expected 1 spell via bus, got %d", spells.Count(1))
	}

	wr.Reset()
	if spells.Count(1) != 0 {
		t.Fatal("registry reset should reset watchers")
	}
}

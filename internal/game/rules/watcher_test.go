package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type passCounter struct {
	*BaseWatcher
	passes int
}

func newPassCounter() *passCounter {
	return &passCounter{BaseWatcher: NewBaseWatcher("passes")}
}

func (w *passCounter) Watch(event Event) {
	if event.Type != EventPriorityPassed {
		return
	}
	w.passes++
	w.SetCondition(true)
}

func (w *passCounter) Reset() {
	w.BaseWatcher.Reset()
	w.passes = 0
}

func TestWatcherRegistryNotify(t *testing.T) {
	registry := NewWatcherRegistry()
	counter := newPassCounter()
	registry.Add(counter)
	registry.Add(nil)

	bus := NewEventBus()
	bus.Subscribe(registry.Notify)

	bus.Publish(NewEvent(PriorityPassed{Player: 0, Next: 1}, 1, PhaseMain, time.Now()))
	bus.Publish(NewEvent(SpellCast{Player: 1}, 1, PhaseMain, time.Now()))
	bus.Publish(NewEvent(PriorityPassed{Player: 1, Next: 0}, 1, PhaseMain, time.Now()))

	assert.Equal(t, 2, counter.passes)
	assert.True(t, counter.ConditionMet())
	assert.Same(t, counter, registry.Get("passes"))
	assert.Len(t, registry.All(), 1)

	registry.Reset()
	assert.Equal(t, 0, counter.passes)
	assert.False(t, counter.ConditionMet())
}

func TestWatcherRegistryReplacesSameKey(t *testing.T) {
	registry := NewWatcherRegistry()
	first := newPassCounter()
	second := newPassCounter()
	registry.Add(first)
	registry.Add(second)

	assert.Len(t, registry.All(), 1)
	assert.Same(t, second, registry.Get("passes"))
}

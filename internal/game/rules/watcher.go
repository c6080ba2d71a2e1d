package rules

import "sync"

// Watcher observes game events and accumulates statistics or conditions.
type Watcher interface {
	// Watch is called for every published event.
	Watch(event Event)
	// Reset clears the watcher's accumulated state.
	Reset()
	// ConditionMet reports whether the tracked condition has occurred.
	ConditionMet() bool
	// Key identifies the watcher within a registry.
	Key() string
}

// BaseWatcher carries the key and condition flag shared by watchers.
type BaseWatcher struct {
	key       string
	condition bool
}

// NewBaseWatcher creates a base watcher with the given registry key.
func NewBaseWatcher(key string) *BaseWatcher {
	return &BaseWatcher{key: key}
}

// Key returns the unique key for this watcher.
func (bw *BaseWatcher) Key() string {
	return bw.key
}

// ConditionMet returns whether the condition has been met.
func (bw *BaseWatcher) ConditionMet() bool {
	return bw.condition
}

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// Reset clears the condition.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// WatcherRegistry fans events out to registered watchers.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher)}
}

// Add registers a watcher, replacing any watcher with the same key.
func (wr *WatcherRegistry) Add(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	key := watcher.Key()
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// Get retrieves a watcher by key.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// All returns the registered watchers in registration order.
func (wr *WatcherRegistry) All() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	result := make([]Watcher, 0, len(wr.order))
	for _, key := range wr.order {
		result = append(result, wr.watchers[key])
	}
	return result
}

// Reset resets every watcher.
func (wr *WatcherRegistry) Reset() {
	for _, w := range wr.All() {
		w.Reset()
	}
}

// Notify delivers an event to every watcher. It has the Listener signature
// so a registry can subscribe directly to an EventBus.
func (wr *WatcherRegistry) Notify(event Event) {
	for _, w := range wr.All() {
		w.Watch(event)
	}
}

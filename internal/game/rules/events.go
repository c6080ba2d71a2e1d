package rules

import (
	"fmt"
	"sync"
	"time"
)

// EventType enumerates everything the engine announces to observers.
type EventType int

const (
	EventGameInitialized EventType = iota + 1
	EventGameStarted
	EventResourcePlaced
	EventFamiliarSummoned
	EventSpellCast
	EventAttackDeclared
	EventBlockDeclared
	EventCombatDamageResolved
	EventCreatureDestroyed
	EventAbilityActivated
	EventPriorityPassed
	EventPhaseStarted
	EventPhaseEnded
	EventTurnEnded
	EventStackItemResolved
	EventGameOver
)

var eventNames = map[EventType]string{
	EventGameInitialized:      "gameInitialized",
	EventGameStarted:          "gameStarted",
	EventResourcePlaced:       "resourcePlaced",
	EventFamiliarSummoned:     "familiarSummoned",
	EventSpellCast:            "spellCast",
	EventAttackDeclared:       "attackDeclared",
	EventBlockDeclared:        "blockDeclared",
	EventCombatDamageResolved: "combatDamageResolved",
	EventCreatureDestroyed:    "creatureDestroyed",
	EventAbilityActivated:     "abilityActivated",
	EventPriorityPassed:       "priorityPassed",
	EventPhaseStarted:         "phaseStarted",
	EventPhaseEnded:           "phaseEnded",
	EventTurnEnded:            "turnEnded",
	EventStackItemResolved:    "stackItemResolved",
	EventGameOver:             "gameOver",
}

func (et EventType) String() string {
	if name, ok := eventNames[et]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(et))
}

// MarshalText encodes the event type by name.
func (et EventType) MarshalText() ([]byte, error) {
	if _, ok := eventNames[et]; !ok {
		return nil, fmt.Errorf("unknown event type %d", int(et))
	}
	return []byte(et.String()), nil
}

// Payload is implemented by the typed body of each event.
type Payload interface {
	EventType() EventType
}

// Event is one engine notification. Payloads hold ids and values only, never
// references into game state.
type Event struct {
	Type      EventType
	Turn      int
	Phase     Phase
	Timestamp time.Time
	Payload   Payload
}

// NewEvent wraps a payload with the turn position it happened at.
func NewEvent(payload Payload, turn int, phase Phase, at time.Time) Event {
	return Event{
		Type:      payload.EventType(),
		Turn:      turn,
		Phase:     phase,
		Timestamp: at,
		Payload:   payload,
	}
}

type GameInitialized struct {
	Players   [2]string
	LifeCards int
	HandSize  int
}

type GameStarted struct {
	FirstPlayer int
}

type ResourcePlaced struct {
	Player int
	CardID string
}

type FamiliarSummoned struct {
	Player           int
	CardID           string
	Name             string
	Paid             []string
	StrengthCounters int
}

type SpellCast struct {
	Player  int
	CardID  string
	Name    string
	Paid    []string
	Targets []string
}

type AttackDeclared struct {
	Player    int
	Defender  int
	Attackers []string
}

// BlockPair assigns one blocker to one attacker.
type BlockPair struct {
	BlockerID  string `json:"blockerId"`
	AttackerID string `json:"attackerId"`
}

type BlockDeclared struct {
	Player int
	Blocks []BlockPair
}

type CombatDamageResolved struct {
	Attacker       int
	Defender       int
	DamageToPlayer int
	Destroyed      []string
}

type CreatureDestroyed struct {
	Owner  int
	CardID string
	Name   string
}

type AbilityActivated struct {
	Player    int
	CardID    string
	AbilityID string
	Targets   []string
}

type PriorityPassed struct {
	Player int
	Next   int
}

type PhaseStarted struct {
	Phase  Phase
	Player int
}

type PhaseEnded struct {
	Phase  Phase
	Player int
}

type TurnEnded struct {
	Player     int
	NextPlayer int
	Turn       int
}

type StackItemResolved struct {
	ItemID     string
	Kind       StackItemKind
	Controller int
	CardID     string
}

type GameOver struct {
	Winner int
	Loser  int
}

func (GameInitialized) EventType() EventType      { return EventGameInitialized }
func (GameStarted) EventType() EventType          { return EventGameStarted }
func (ResourcePlaced) EventType() EventType       { return EventResourcePlaced }
func (FamiliarSummoned) EventType() EventType     { return EventFamiliarSummoned }
func (SpellCast) EventType() EventType            { return EventSpellCast }
func (AttackDeclared) EventType() EventType       { return EventAttackDeclared }
func (BlockDeclared) EventType() EventType        { return EventBlockDeclared }
func (CombatDamageResolved) EventType() EventType { return EventCombatDamageResolved }
func (CreatureDestroyed) EventType() EventType    { return EventCreatureDestroyed }
func (AbilityActivated) EventType() EventType     { return EventAbilityActivated }
func (PriorityPassed) EventType() EventType       { return EventPriorityPassed }
func (PhaseStarted) EventType() EventType         { return EventPhaseStarted }
func (PhaseEnded) EventType() EventType           { return EventPhaseEnded }
func (TurnEnded) EventType() EventType            { return EventTurnEnded }
func (StackItemResolved) EventType() EventType    { return EventStackItemResolved }
func (GameOver) EventType() EventType             { return EventGameOver }

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // zero for all events
	listener  Listener
}

// EventBus is a synchronous publish/subscribe hub with optional filtering
// by event type. Listeners run in subscription order on the publishing
// goroutine.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add(0, listener)
}

// SubscribeTyped registers a listener for a single event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, listener: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching listener. Listeners may
// subscribe or unsubscribe from within a callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == 0 || sub.eventType == event.Type {
			sub.listener(event)
		}
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

package rules

import "time"

// DefaultLogCapacity is the number of entries a GameLog keeps.
const DefaultLogCapacity = 100

// LogCategory groups game log entries for spectator feeds.
type LogCategory string

const (
	LogGame     LogCategory = "game"
	LogTurn     LogCategory = "turn"
	LogPhase    LogCategory = "phase"
	LogPriority LogCategory = "priority"
	LogResource LogCategory = "resource"
	LogSummon   LogCategory = "summon"
	LogSpell    LogCategory = "spell"
	LogAbility  LogCategory = "ability"
	LogCombat   LogCategory = "combat"
	LogDamage   LogCategory = "damage"
	LogStack    LogCategory = "stack"
)

// LogEntry is one line of the game log.
type LogEntry struct {
	Category  LogCategory
	Text      string
	Timestamp time.Time
}

// GameLog is a bounded append-only log; once full, the oldest entry is
// evicted for each new one.
type GameLog struct {
	Capacity int
	Items    []LogEntry
}

// NewGameLog creates a log holding at most capacity entries.
func NewGameLog(capacity int) *GameLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &GameLog{Capacity: capacity, Items: make([]LogEntry, 0, capacity)}
}

// Add appends an entry, evicting the oldest when full.
func (l *GameLog) Add(category LogCategory, text string, at time.Time) {
	if len(l.Items) >= l.Capacity {
		copy(l.Items, l.Items[1:])
		l.Items = l.Items[:len(l.Items)-1]
	}
	l.Items = append(l.Items, LogEntry{Category: category, Text: text, Timestamp: at})
}

// Entries returns a copy of the log, oldest first.
func (l *GameLog) Entries() []LogEntry {
	cpy := make([]LogEntry, len(l.Items))
	copy(cpy, l.Items)
	return cpy
}

// Len returns the number of entries held.
func (l *GameLog) Len() int {
	return len(l.Items)
}

// Clone returns an independent copy.
func (l *GameLog) Clone() *GameLog {
	cpy := &GameLog{Capacity: l.Capacity, Items: make([]LogEntry, len(l.Items), l.Capacity)}
	copy(cpy.Items, l.Items)
	return cpy
}

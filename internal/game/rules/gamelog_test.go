package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameLogEvictsOldest(t *testing.T) {
	log := NewGameLog(0)
	require.Equal(t, DefaultLogCapacity, log.Capacity)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultLogCapacity+5; i++ {
		log.Add(LogGame, fmt.Sprintf("entry %d", i), at.Add(time.Duration(i)*time.Second))
	}

	entries := log.Entries()
	require.Len(t, entries, DefaultLogCapacity)
	assert.Equal(t, "entry 5", entries[0].Text)
	assert.Equal(t, fmt.Sprintf("entry %d", DefaultLogCapacity+4), entries[len(entries)-1].Text)
}

func TestGameLogCloneIsIndependent(t *testing.T) {
	log := NewGameLog(3)
	log.Add(LogTurn, "one", time.Now())

	cpy := log.Clone()
	cpy.Add(LogTurn, "two", time.Now())

	assert.Equal(t, 1, log.Len())
	assert.Equal(t, 2, cpy.Len())
	assert.Equal(t, 3, cpy.Capacity)
}

package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/thraizz/azoth-server-go/internal/game/counters"
)

// Checksum is a SHA-256 over a canonical rendering of the game state.
// Timestamps are excluded, so two engines fed the same seed and actions
// agree on every checksum.
func (s *GameState) Checksum() string {
	sum := sha256.Sum256(s.canonical())
	return hex.EncodeToString(sum[:])
}

func (s *GameState) canonical() []byte {
	var buf bytes.Buffer

	lastPass := -1
	if s.LastPass != nil {
		lastPass = *s.LastPass
	}
	winner := -1
	if s.Winner != nil {
		winner = *s.Winner
	}
	fmt.Fprintf(&buf, "GAME:%d|%s|%d|%d|%d|%t|%d\n",
		s.Turn, s.Phase, s.CurrentPlayer, s.ActivePlayer, lastPass, s.AttackDeclared, winner)

	for _, pl := range s.Players {
		if pl == nil {
			continue
		}
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%s|%t\n", pl.ID, pl.Name, pl.Flag, pl.ResourcePlacedThisTurn)
		for _, kind := range playerZones {
			fmt.Fprintf(&buf, "  ZONE:%s\n", kind)
			for _, c := range *pl.Zone(kind) {
				writeCard(&buf, c)
			}
		}
	}

	for _, item := range s.Stack.List() {
		fmt.Fprintf(&buf, "STACK:%s|%s|%d|%s\n", item.StackID(), item.Kind(), item.ControllerID(), item.SourceCard().ID)
	}
	for _, entry := range s.Log.Items {
		fmt.Fprintf(&buf, "LOG:%s|%s\n", entry.Category, entry.Text)
	}
	return buf.Bytes()
}

func writeCard(buf *bytes.Buffer, c *Card) {
	fmt.Fprintf(buf, "    CARD:%s|%s|%d|%t|%t|%d|%t|%s|%s|%t\n",
		c.ID, c.Name(), c.Owner, c.Tapped, c.SummoningSickness,
		c.Damage, c.Attacking, c.BlockedBy, c.Blocking, c.FaceDown)
	if c.Counters.IsEmpty() {
		return
	}
	names := make([]counters.CounterType, 0, len(c.Counters.Counters))
	for name := range c.Counters.Counters {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(buf, "      COUNTER:%s=%d\n", name, c.Counters.Count(name))
	}
}

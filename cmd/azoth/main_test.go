package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
cards:
  - name: Ember Fox
    type: familiar
    cost: "{1}"
    elements: [fire]
    power: 2
    toughness: 1
  - name: Spark
    type: spell
    cost: "{1}"
    effect: damage 1
    abilities:
      - id: burst
        kind: burst
        effect: damage 1
  - name: Stone Wall
    type: familiar
    cost: "{1}"
    power: 0
    toughness: 4
decks:
  - name: Embers
    flag: red
    cards:
      - card: Ember Fox
        count: 16
      - card: Spark
        count: 4
  - name: Walls
    cards:
      - card: Stone Wall
        count: 12
      - card: Ember Fox
        count: 8
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cards := filepath.Join(dir, "cards.yaml")
	require.NoError(t, os.WriteFile(cards, []byte(testCatalog), 0o644))

	cfg := filepath.Join(dir, "azoth.yaml")
	body := fmt.Sprintf(`
logging:
  level: error
catalog:
  path: %s
replay:
  directory: %s
`, cards, filepath.Join(dir, "replays"))
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	out, err := execute(t, "simulate", "--seed", "1", "--max-turns", "40")
	require.NoError(t, err)

	assert.Contains(t, out, "game ")
	assert.Regexp(t, `winner: Player [AB] on turn \d+|no winner after \d+ turns`, out)
	assert.Contains(t, out, "Player A: ")
	assert.Contains(t, out, "Player B: ")
}

func TestSimulateIsReproducible(t *testing.T) {
	first, err := execute(t, "simulate", "--seed", "9", "--deck-a", "walls", "--deck-b", "embers")
	require.NoError(t, err)
	second, err := execute(t, "simulate", "--seed", "9", "--deck-a", "walls", "--deck-b", "embers")
	require.NoError(t, err)

	// Game ids differ between runs.
	trim := func(s string) string { return s[bytes.IndexByte([]byte(s), '\n')+1:] }
	assert.Equal(t, trim(first), trim(second))
}

func TestSimulateUnknownDeck(t *testing.T) {
	_, err := execute(t, "simulate", "--deck-a", "nope")
	assert.ErrorContains(t, err, `unknown deck "nope"`)
}

func TestCardsList(t *testing.T) {
	out, err := execute(t, "cards", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `Ember Fox\s+familiar\s+\{1\}\s+2/1\s+fire`, out)
	assert.Contains(t, out, "burst (burst)")

	out, err = execute(t, "cards", "list", "--type", "spell")
	require.NoError(t, err)
	assert.Contains(t, out, "Spark")
	assert.NotContains(t, out, "Stone Wall")

	_, err = execute(t, "cards", "list", "--type", "artifact")
	assert.Error(t, err)
}

func TestCardsDecks(t *testing.T) {
	out, err := execute(t, "cards", "decks")
	require.NoError(t, err)
	assert.Regexp(t, `Embers\s+red\s+20`, out)
	assert.Regexp(t, `Walls\s+20`, out)
}

func TestCardsImportNeedsDatabase(t *testing.T) {
	_, err := execute(t, "cards", "import")
	assert.ErrorContains(t, err, "database_url")
}

func TestLeagueCommand(t *testing.T) {
	out, err := execute(t, "league", "--seed", "4", "--max-turns", "30", "--workers", "2", "-v")
	require.NoError(t, err)

	assert.Regexp(t, `Embers\s+Walls\s+4\s+`, out)
	assert.Regexp(t, `Walls\s+Embers\s+5\s+`, out)
	assert.Regexp(t, `1\s+\w+\s+2\s+\d\s+\d\s+\d\s+\d`, out)
}

package rules

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectMatchesSentinel(t *testing.T) {
	err := Reject(ErrWrongPhase, "cannot place a resource during %s", PhaseCombat)

	assert.True(t, errors.Is(err, ErrWrongPhase))
	assert.False(t, errors.Is(err, ErrNotYourTurn))
	assert.Equal(t, "WrongPhase: cannot place a resource during combat", err.Error())
	assert.Equal(t, KindWrongPhase, KindOf(err))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("summon: %w", Reject(ErrInsufficientPayment, "need 3, paid 2"))

	assert.ErrorIs(t, wrapped, ErrInsufficientPayment)
	assert.Equal(t, KindInsufficientPayment, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestSentinelErrorText(t *testing.T) {
	assert.Equal(t, "GameAlreadyOver", ErrGameAlreadyOver.Error())
}

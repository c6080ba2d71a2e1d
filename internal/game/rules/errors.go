package rules

import (
	"errors"
	"fmt"
)

// ErrorKind names a class of rejected action.
type ErrorKind string

const (
	KindInvalidPlayerCount       ErrorKind = "InvalidPlayerCount"
	KindInvalidDeck              ErrorKind = "InvalidDeck"
	KindAlreadyStarted           ErrorKind = "AlreadyStarted"
	KindGameNotStarted           ErrorKind = "GameNotStarted"
	KindGameAlreadyOver          ErrorKind = "GameAlreadyOver"
	KindInvalidPlayer            ErrorKind = "InvalidPlayer"
	KindNotYourPriority          ErrorKind = "NotYourPriority"
	KindNotYourTurn              ErrorKind = "NotYourTurn"
	KindUnknownAction            ErrorKind = "UnknownAction"
	KindInvalidActionData        ErrorKind = "InvalidActionData"
	KindWrongPhase               ErrorKind = "WrongPhase"
	KindAlreadyPlacedThisTurn    ErrorKind = "AlreadyPlacedThisTurn"
	KindCardNotInHand            ErrorKind = "CardNotInHand"
	KindCardNotFound             ErrorKind = "CardNotFound"
	KindInvalidCardType          ErrorKind = "InvalidCardType"
	KindAbilityNotFound          ErrorKind = "AbilityNotFound"
	KindResourceNotFound         ErrorKind = "ResourceNotFound"
	KindResourceAlreadyTapped    ErrorKind = "ResourceAlreadyTapped"
	KindInsufficientPayment      ErrorKind = "InsufficientPayment"
	KindNoAttackers              ErrorKind = "NoAttackers"
	KindAttackerTapped           ErrorKind = "AttackerTapped"
	KindSummoningSickness        ErrorKind = "SummoningSickness"
	KindNotDefendingPlayer       ErrorKind = "NotDefendingPlayer"
	KindBlockerTapped            ErrorKind = "BlockerTapped"
	KindBlockerAlreadyAssigned   ErrorKind = "BlockerAlreadyAssigned"
	KindNotAttacking             ErrorKind = "NotAttacking"
	KindAttackerAlreadyBlocked   ErrorKind = "AttackerAlreadyBlocked"
	KindGameNotInitialized       ErrorKind = "GameNotInitialized"
)

// RuleError reports an action the rules do not allow. Two RuleErrors match
// under errors.Is when their kinds are equal, so callers compare against the
// Err* sentinels below regardless of the detail text.
type RuleError struct {
	Kind   ErrorKind
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is implements errors.Is matching by kind.
func (e *RuleError) Is(target error) bool {
	var other *RuleError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrInvalidPlayerCount     = &RuleError{Kind: KindInvalidPlayerCount}
	ErrInvalidDeck            = &RuleError{Kind: KindInvalidDeck}
	ErrAlreadyStarted         = &RuleError{Kind: KindAlreadyStarted}
	ErrGameNotStarted         = &RuleError{Kind: KindGameNotStarted}
	ErrGameAlreadyOver        = &RuleError{Kind: KindGameAlreadyOver}
	ErrInvalidPlayer          = &RuleError{Kind: KindInvalidPlayer}
	ErrNotYourPriority        = &RuleError{Kind: KindNotYourPriority}
	ErrNotYourTurn            = &RuleError{Kind: KindNotYourTurn}
	ErrUnknownAction          = &RuleError{Kind: KindUnknownAction}
	ErrInvalidActionData      = &RuleError{Kind: KindInvalidActionData}
	ErrWrongPhase             = &RuleError{Kind: KindWrongPhase}
	ErrAlreadyPlacedThisTurn  = &RuleError{Kind: KindAlreadyPlacedThisTurn}
	ErrCardNotInHand          = &RuleError{Kind: KindCardNotInHand}
	ErrCardNotFound           = &RuleError{Kind: KindCardNotFound}
	ErrInvalidCardType        = &RuleError{Kind: KindInvalidCardType}
	ErrAbilityNotFound        = &RuleError{Kind: KindAbilityNotFound}
	ErrResourceNotFound       = &RuleError{Kind: KindResourceNotFound}
	ErrResourceAlreadyTapped  = &RuleError{Kind: KindResourceAlreadyTapped}
	ErrInsufficientPayment    = &RuleError{Kind: KindInsufficientPayment}
	ErrNoAttackers            = &RuleError{Kind: KindNoAttackers}
	ErrAttackerTapped         = &RuleError{Kind: KindAttackerTapped}
	ErrSummoningSickness      = &RuleError{Kind: KindSummoningSickness}
	ErrNotDefendingPlayer     = &RuleError{Kind: KindNotDefendingPlayer}
	ErrBlockerTapped          = &RuleError{Kind: KindBlockerTapped}
	ErrBlockerAlreadyAssigned = &RuleError{Kind: KindBlockerAlreadyAssigned}
	ErrNotAttacking           = &RuleError{Kind: KindNotAttacking}
	ErrAttackerAlreadyBlocked = &RuleError{Kind: KindAttackerAlreadyBlocked}
	ErrGameNotInitialized     = &RuleError{Kind: KindGameNotInitialized}
)

// Reject builds a RuleError of the sentinel's kind with a formatted detail.
func Reject(sentinel *RuleError, format string, args ...any) error {
	return &RuleError{Kind: sentinel.Kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a RuleError anywhere in err's chain, or "" if
// err is not a rules violation.
func KindOf(err error) ErrorKind {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

package rules

import "errors"

// StackItemKind describes the type of object on the stack.
type StackItemKind string

const (
	// StackItemKindSpell is a spell cast from hand.
	StackItemKindSpell StackItemKind = "spell"
	// StackItemKindAbility is an activated ability of a card on the field.
	StackItemKindAbility StackItemKind = "ability"
	// StackItemKindBurst is a life-card played for free when revealed.
	StackItemKindBurst StackItemKind = "burst"
)

// ErrStackEmpty is returned by Pop on an empty stack.
var ErrStackEmpty = errors.New("stack empty")

// Stack is the shared last-in first-out resolution stack. Items is exported
// for encoding; callers use the methods.
type Stack[T any] struct {
	Items []T
}

// NewStack creates an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{Items: make([]T, 0, 8)}
}

// Push adds an item to the top of the stack.
func (s *Stack[T]) Push(item T) {
	s.Items = append(s.Items, item)
}

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if len(s.Items) == 0 {
		return zero, ErrStackEmpty
	}
	idx := len(s.Items) - 1
	item := s.Items[idx]
	s.Items[idx] = zero
	s.Items = s.Items[:idx]
	return item, nil
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.Items) == 0 {
		return zero, false
	}
	return s.Items[len(s.Items)-1], true
}

// Len returns the number of pending items.
func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// IsEmpty returns whether the stack is empty.
func (s *Stack[T]) IsEmpty() bool {
	return s.Len() == 0
}

// List returns a copy of all stack items (topmost last). A nil stack, as
// left by decoding an empty one, lists nothing.
func (s *Stack[T]) List() []T {
	if s == nil {
		return nil
	}
	cpy := make([]T, len(s.Items))
	copy(cpy, s.Items)
	return cpy
}

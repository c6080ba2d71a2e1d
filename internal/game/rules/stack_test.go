package rules

import (
	"errors"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack[string]()

	s.Push("first")
	s.Push("second")

	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}

	top, ok := s.Peek()
	if !ok || top != "second" {
		t.Fatalf("expected peek to return second, got %q", top)
	}

	item, err := s.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping top: %v", err)
	}
	if item != "second" {
		t.Fatalf("expected LIFO order (second), got %s", item)
	}

	item, err = s.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping second item: %v", err)
	}
	if item != "first" {
		t.Fatalf("expected remaining item to be first, got %s", item)
	}

	if !s.IsEmpty() {
		t.Fatalf("expected stack to be empty")
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackEmpty) {
		t.Fatalf("expected ErrStackEmpty, got %v", err)
	}
	if _, ok := s.Peek(); ok {
		t.Fatalf("expected peek on empty stack to fail")
	}
}

func TestStackListIsCopy(t *testing.T) {
	s := NewStack[int]()
	s.Push(1)
	s.Push(2)

	list := s.List()
	list[0] = 99

	if s.Items[0] != 1 {
		t.Fatalf("expected List to return a copy, stack now holds %d", s.Items[0])
	}
	if len(list) != 2 || list[1] != 2 {
		t.Fatalf("expected topmost item last, got %v", list)
	}
}

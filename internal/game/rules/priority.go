package rules

import "fmt"

// DefaultMaxResolutionDepth bounds nested stack resolution.
const DefaultMaxResolutionDepth = 10

// ResolutionContext tracks which stack items are resolving. Resolution
// nests when an effect pushes and resolves further items (a burst revealed
// by damage dealt during another item's resolution).
type ResolutionContext struct {
	resolving []string // innermost at end
	maxDepth  int
}

// NewResolutionContext creates a context allowing maxDepth nested items.
// A non-positive maxDepth selects DefaultMaxResolutionDepth.
func NewResolutionContext(maxDepth int) *ResolutionContext {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxResolutionDepth
	}
	return &ResolutionContext{
		resolving: make([]string, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Begin marks the start of resolving a stack item.
func (rc *ResolutionContext) Begin(itemID string) error {
	if len(rc.resolving) >= rc.maxDepth {
		return fmt.Errorf("maximum resolution depth (%d) exceeded", rc.maxDepth)
	}
	rc.resolving = append(rc.resolving, itemID)
	return nil
}

// End marks the end of resolving itemID, which must be the innermost item.
func (rc *ResolutionContext) End(itemID string) error {
	if len(rc.resolving) == 0 {
		return fmt.Errorf("no item currently resolving")
	}
	current := rc.resolving[len(rc.resolving)-1]
	if current != itemID {
		return fmt.Errorf("resolution mismatch: expected %s, got %s", current, itemID)
	}
	rc.resolving = rc.resolving[:len(rc.resolving)-1]
	return nil
}

// IsResolving returns true if something is currently resolving.
func (rc *ResolutionContext) IsResolving() bool {
	return len(rc.resolving) > 0
}

// Current returns the innermost resolving item id.
func (rc *ResolutionContext) Current() string {
	if len(rc.resolving) == 0 {
		return ""
	}
	return rc.resolving[len(rc.resolving)-1]
}

// Depth returns the current nesting depth.
func (rc *ResolutionContext) Depth() int {
	return len(rc.resolving)
}

// Reset clears all resolution state.
func (rc *ResolutionContext) Reset() {
	rc.resolving = rc.resolving[:0]
}

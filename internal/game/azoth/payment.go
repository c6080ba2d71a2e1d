package azoth

import (
	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

// Source is a resource-row card as seen by payment verification.
type Source struct {
	ID       string
	Tapped   bool
	Elements []Element
}

// Plan is a verified payment.
type Plan struct {
	// Paid lists the resource ids to tap, in the order given.
	Paid []string
	// Excess is how many resources were paid beyond the cost.
	Excess int
	// UnmatchedElements are element requirements no paid resource carries.
	// Payment only checks quantity; callers surface these as warnings.
	UnmatchedElements []Element
}

// Verify checks that paid names untapped resources from row and covers
// cost by count. It never mutates row; the caller taps Plan.Paid.
func Verify(cost Cost, row []Source, paid []string) (*Plan, error) {
	byID := make(map[string]Source, len(row))
	for _, src := range row {
		byID[src.ID] = src
	}

	seen := make(map[string]bool, len(paid))
	used := make([]Source, 0, len(paid))
	for _, id := range paid {
		src, ok := byID[id]
		if !ok {
			return nil, rules.Reject(rules.ErrResourceNotFound, "resource %s is not in the resource row", id)
		}
		if src.Tapped || seen[id] {
			return nil, rules.Reject(rules.ErrResourceAlreadyTapped, "resource %s is already tapped", id)
		}
		seen[id] = true
		used = append(used, src)
	}

	if len(paid) < cost.Total() {
		return nil, rules.Reject(rules.ErrInsufficientPayment, "cost %s needs %d resources, paid %d", cost, cost.Total(), len(paid))
	}

	return &Plan{
		Paid:              append([]string(nil), paid...),
		Excess:            len(paid) - cost.Total(),
		UnmatchedElements: unmatchedElements(cost, used),
	}, nil
}

// unmatchedElements greedily assigns each element requirement to a paid
// resource carrying that element and returns the requirements left over.
func unmatchedElements(cost Cost, used []Source) []Element {
	if len(cost.Elements) == 0 {
		return nil
	}
	taken := make([]bool, len(used))
	var missing []Element
	for _, want := range cost.Elements {
		found := false
		for i, src := range used {
			if taken[i] || !carries(src, want) {
				continue
			}
			taken[i] = true
			found = true
			break
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

func carries(src Source, el Element) bool {
	for _, have := range src.Elements {
		if have == el {
			return true
		}
	}
	return false
}

// Untapped counts the untapped sources in row.
func Untapped(row []Source) int {
	n := 0
	for _, src := range row {
		if !src.Tapped {
			n++
		}
	}
	return n
}

package engine

import "github.com/ahmedmed7t/smartcookly/internal/domain"

// Navigator tracks a position in an ordered, immutable step list.
// It is not safe for concurrent use; the Controller serializes access.
type Navigator struct {
	steps []domain.CookingStep
	index int
}

// NewNavigator creates a navigator positioned on the first step.
func NewNavigator(steps []domain.CookingStep) *Navigator {
	return &Navigator{steps: domain.CloneSteps(steps)}
}

// CurrentStep returns the step at the current index. The second result is
// false when the list is empty.
func (n *Navigator) CurrentStep() (domain.CookingStep, bool) {
	if len(n.steps) == 0 {
		return domain.CookingStep{}, false
	}
	return n.steps[n.index], true
}

// Index returns the zero-based current position.
func (n *Navigator) Index() int { return n.index }

// Len returns the number of steps.
func (n *Navigator) Len() int { return len(n.steps) }

// IsFirst reports whether the navigator is on the first step.
func (n *Navigator) IsFirst() bool { return n.index == 0 }

// IsLast reports whether the navigator is on the last step. An empty list
// is both first and last.
func (n *Navigator) IsLast() bool { return n.index >= len(n.steps)-1 }

// Advance moves one step forward. Returns false, without moving, on the
// last step.
func (n *Navigator) Advance() bool {
	if n.IsLast() {
		return false
	}
	n.index++
	return true
}

// Retreat moves one step back. Returns false, without moving, on the
// first step.
func (n *Navigator) Retreat() bool {
	if n.IsFirst() {
		return false
	}
	n.index--
	return true
}

// Progress returns (index+1)/len as a fraction in (0, 1], or 0 for an
// empty list.
func (n *Navigator) Progress() float64 {
	if len(n.steps) == 0 {
		return 0
	}
	return float64(n.index+1) / float64(len(n.steps))
}

// Steps returns the underlying list. Callers must not modify it.
func (n *Navigator) Steps() []domain.CookingStep { return n.steps }

// Package sim holds the failure taxonomy and small numeric helpers shared
// by every simulation subsystem. Player-facing failures are reported, never
// fatal: a rejected action leaves all state untouched.
package sim

import "errors"

var (
	// ErrUnaffordable reports a cost exceeding current stocks or research
	// progress.
	ErrUnaffordable = errors.New("unaffordable")

	// ErrInvalidReference reports an unknown resource, building, recipe,
	// technology, secret, character, or quest id.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrPrerequisiteUnmet reports a gate that is not open yet: a missing
	// technology, an undiscovered secret, a relationship below threshold,
	// or an unsatisfied quest condition.
	ErrPrerequisiteUnmet = errors.New("prerequisite unmet")

	// ErrInvalidQuantity reports a zero, negative, or otherwise malformed
	// amount.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

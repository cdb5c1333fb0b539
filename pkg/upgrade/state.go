package upgrade

import (
	"errors"
	"fmt"
	"slices"
)

// State is a checkout session's position in the upgrade workflow
type State string

const (
	StateBrowsing       State = "browsing"
	StatePlanSelected   State = "plan_selected"
	StateCheckoutLoaded State = "checkout_loaded"
	StateProofCaptured  State = "proof_captured"
	StateSubmitFailed   State = "submit_failed"
	StateSubmitted      State = "submitted"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateSubmitted
}

// Transition is a single edge of the workflow
type Transition struct {
	From State
	To   State
}

var validTransitions = map[Transition]bool{
	{StateBrowsing, StatePlanSelected}:        true, // plan picked from the catalog
	{StatePlanSelected, StatePlanSelected}:    true, // another plan picked, last one wins
	{StatePlanSelected, StateCheckoutLoaded}:  true, // intent consumed by checkout
	{StateCheckoutLoaded, StateProofCaptured}: true,
	{StateProofCaptured, StateProofCaptured}:  true, // proof replaced before submitting
	{StateProofCaptured, StateSubmitted}:      true,
	{StateProofCaptured, StateSubmitFailed}:   true,
	{StateSubmitFailed, StateProofCaptured}:   true, // retry keeps the uploaded proof
}

// ErrInvalidTransition is returned when an operation does not apply to the
// session's current state
var ErrInvalidTransition = errors.New("invalid workflow transition")

// TransitionError describes a rejected transition
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// CanTransition checks if a transition from one state to another is valid
func CanTransition(from, to State) bool {
	return validTransitions[Transition{from, to}]
}

// ValidTransitionsFrom returns all valid target states from the given state
func ValidTransitionsFrom(from State) []State {
	targets := make([]State, 0)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

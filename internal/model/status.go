package model

import (
	"fmt"
	"strings"
)

// SlabStatus is the lifecycle label of a slab.
type SlabStatus string

const (
	SlabSubmitted SlabStatus = "Submitted"
	SlabReady     SlabStatus = "Ready"
	SlabListed    SlabStatus = "Listed"
	SlabSold      SlabStatus = "Sold"
	SlabStashed   SlabStatus = "Stashed"
)

// SlabStatuses lists every status in lifecycle order.
var SlabStatuses = []SlabStatus{SlabSubmitted, SlabReady, SlabListed, SlabSold, SlabStashed}

// ParseSlabStatus accepts a status name in any letter case.
func ParseSlabStatus(s string) (SlabStatus, error) {
	for _, status := range SlabStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// TransitionOrigin says who is asking for a status change.
type TransitionOrigin int

const (
	// OriginUser is an explicit user action against the relational store.
	OriginUser TransitionOrigin = iota
	// OriginSystem is the grading workflow marking a slab complete.
	OriginSystem
	// OriginManual is bookkeeping in the inventory document, where the user also asserts readiness.
	OriginManual
)

type transition struct {
	from, to SlabStatus
}

// transitions lists the allowed moves. A true value marks a move users cannot request directly.
var transitions = map[transition]bool{
	{SlabSubmitted, SlabReady}:   true,
	{SlabReady, SlabListed}:      false,
	{SlabListed, SlabSold}:       false,
	{SlabSubmitted, SlabStashed}: false,
	{SlabReady, SlabStashed}:     false,
	{SlabListed, SlabStashed}:    false,
	{SlabSold, SlabStashed}:      false,
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	From SlabStatus
	To   SlabStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move slab from %s to %s", e.From, e.To)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// CheckTransition validates moving a slab from one status to another.
func CheckTransition(from, to SlabStatus, origin TransitionOrigin) error {
	systemOnly, ok := transitions[transition{from, to}]
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	if systemOnly && origin == OriginUser {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

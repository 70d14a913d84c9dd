package requests

import (
	"fmt"
	"time"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Status enumerates document request states.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusIssued      Status = "ISSUED"
	StatusRejected    Status = "REJECTED"
)

// transitions is the single legal-transition table for the workflow.
// ISSUED and REJECTED are terminal.
var transitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusIssued, StatusRejected},
}

// CanTransition reports whether from -> to appears in the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether the status is a known workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusIssued, StatusRejected:
		return true
	}
	return false
}

// DocumentRequest is a resident-initiated ask for an issued document.
type DocumentRequest struct {
	ID                string     `json:"id" db:"id"`
	PersonID          string     `json:"person_id" db:"person_id"`
	Kind              string     `json:"kind" db:"kind"`
	Purpose           string     `json:"purpose" db:"purpose"`
	RequestedExpiry   *time.Time `json:"requested_expiry,omitempty" db:"requested_expiry"`
	ResidentNotes     *string    `json:"resident_notes,omitempty" db:"resident_notes"`
	AdditionalInfo    *string    `json:"additional_info,omitempty" db:"additional_info"`
	Status            Status     `json:"status" db:"status"`
	StaffNotes        *string    `json:"staff_notes,omitempty" db:"staff_notes"`
	HandledBy         *string    `json:"handled_by,omitempty" db:"handled_by"`
	DocumentReference *string    `json:"document_reference,omitempty" db:"document_reference"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Transition applies a reviewed state change. ISSUED is excluded here:
// it is reachable only through MarkIssued so the request cannot close
// without a document.
func (r *DocumentRequest) Transition(to Status, actingUsername, notes string, now time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown state %q", shared.ErrValidation, to)
	}
	if to == StatusIssued {
		return fmt.Errorf("%w: requests are marked issued through document issuance", shared.ErrInvalidTransition)
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, r.Status, to)
	}
	r.Status = to
	r.HandledBy = &actingUsername
	if notes != "" {
		r.StaffNotes = &notes
	}
	r.UpdatedAt = now
	return nil
}

// MarkIssued closes the request against a newly issued document. Legal
// only from APPROVED; invoked by the issuance coordinator so it stays
// atomic with document creation.
func (r *DocumentRequest) MarkIssued(reference, actingUsername string, now time.Time) error {
	if r.Status != StatusApproved {
		return fmt.Errorf("%w: only approved requests can be issued", shared.ErrInvalidState)
	}
	r.Status = StatusIssued
	r.DocumentReference = &reference
	r.HandledBy = &actingUsername
	r.UpdatedAt = now
	return nil
}

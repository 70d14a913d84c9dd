package voters

import (
	"fmt"
	"time"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Status enumerates voter application states.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusScheduled   Status = "SCHEDULED"
	StatusVerified    Status = "VERIFIED"
)

// Kind enumerates voter application kinds.
type Kind string

const (
	KindNew          Kind = "NEW"
	KindTransfer     Kind = "TRANSFER"
	KindReactivation Kind = "REACTIVATION"
)

// transitions is the legal-transition table. Rejection is reachable
// only from PENDING and UNDER_REVIEW; an approved or scheduled
// application has to run its course.
var transitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusScheduled},
	StatusScheduled:   {StatusVerified},
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
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusScheduled, StatusVerified:
		return true
	}
	return false
}

// VoterApplication is a resident's registration, transfer, or
// reactivation ask.
type VoterApplication struct {
	ID              string     `json:"id" db:"id"`
	PersonID        string     `json:"person_id" db:"person_id"`
	Kind            Kind       `json:"kind" db:"kind"`
	IDFrontRef      string     `json:"id_front_ref" db:"id_front_ref"`
	IDBackRef       string     `json:"id_back_ref" db:"id_back_ref"`
	TransferDetails *string    `json:"transfer_details,omitempty" db:"transfer_details"`
	Status          Status     `json:"status" db:"status"`
	ReviewNotes     *string    `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	AppointmentAt   *time.Time `json:"appointment_at,omitempty" db:"appointment_at"`
	Venue           *string    `json:"venue,omitempty" db:"venue"`
	SlipReference   *string    `json:"slip_reference,omitempty" db:"slip_reference"`
	SubmittedAt     time.Time  `json:"submitted_at" db:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// SetUnderReview takes a pending application into review.
func (a *VoterApplication) SetUnderReview(actingUsername string, now time.Time) error {
	if a.Status != StatusPending {
		return fmt.Errorf("%w: only pending applications can enter review", shared.ErrInvalidState)
	}
	a.Status = StatusUnderReview
	a.ReviewedBy = &actingUsername
	a.UpdatedAt = now
	return nil
}

// Approve clears the application for scheduling. Legal from PENDING or
// UNDER_REVIEW.
func (a *VoterApplication) Approve(actingUsername, notes string, now time.Time) error {
	if !CanTransition(a.Status, StatusApproved) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, a.Status, StatusApproved)
	}
	a.Status = StatusApproved
	a.review(actingUsername, notes, now)
	return nil
}

// Reject closes the application. Legal from PENDING or UNDER_REVIEW only.
func (a *VoterApplication) Reject(actingUsername, notes string, now time.Time) error {
	if !CanTransition(a.Status, StatusRejected) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, a.Status, StatusRejected)
	}
	a.Status = StatusRejected
	a.review(actingUsername, notes, now)
	return nil
}

// Schedule books the verification appointment. Legal only from APPROVED.
func (a *VoterApplication) Schedule(at time.Time, venue, slipReference string, now time.Time) error {
	if a.Status != StatusApproved {
		return fmt.Errorf("%w: only approved applications can be scheduled", shared.ErrInvalidState)
	}
	if venue == "" || slipReference == "" {
		return fmt.Errorf("%w: appointment venue and slip reference are required", shared.ErrValidation)
	}
	a.Status = StatusScheduled
	a.AppointmentAt = &at
	a.Venue = &venue
	a.SlipReference = &slipReference
	a.UpdatedAt = now
	return nil
}

// MarkVerified closes out a kept appointment. Legal only from SCHEDULED.
// The coordinating service flips the resident's voter flag in the same
// unit of work.
func (a *VoterApplication) MarkVerified(now time.Time) error {
	if a.Status != StatusScheduled {
		return fmt.Errorf("%w: only scheduled applications can be verified", shared.ErrInvalidState)
	}
	a.Status = StatusVerified
	a.UpdatedAt = now
	return nil
}

func (a *VoterApplication) review(actingUsername, notes string, now time.Time) {
	a.ReviewedBy = &actingUsername
	if notes != "" {
		a.ReviewNotes = &notes
	}
	a.ReviewedAt = &now
	a.UpdatedAt = now
}

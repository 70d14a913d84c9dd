package voters

import (
	"crypto/rand"
	"fmt"

	"github.com/civreg-ph/civreg/internal/shared"
)

// SlipEligible checks that an application may have an appointment slip
// rendered for it: the appointment must be booked and all three
// appointment fields present.
func SlipEligible(a *VoterApplication) error {
	if a.Status != StatusScheduled {
		return fmt.Errorf("%w: slips are printed for scheduled applications only", shared.ErrInvalidState)
	}
	if a.AppointmentAt == nil || a.Venue == nil || a.SlipReference == nil {
		return fmt.Errorf("%w: scheduled application is missing appointment details", shared.ErrInvalidState)
	}
	return nil
}

const slipAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewSlipReference produces a slip reference of the form
// AS-YYYY-XXXXXXXX with a random 8-character uppercase token.
// Collisions are not checked; the token space makes them negligible
// for a single barangay's volume.
func NewSlipReference(year int) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("slip reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = slipAlphabet[int(b)%len(slipAlphabet)]
	}
	return fmt.Sprintf("AS-%d-%s", year, buf), nil
}

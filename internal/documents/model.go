package documents

import "time"

// Kind enumerates the documents the barangay issues.
type Kind string

const (
	KindBarangayID        Kind = "BARANGAY_ID"
	KindBarangayClearance Kind = "BARANGAY_CLEARANCE"
	KindCertResidency     Kind = "CERT_RESIDENCY"
)

// Prefix returns the reference series prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindBarangayID:
		return "BID"
	case KindBarangayClearance:
		return "BC"
	case KindCertResidency:
		return "CR"
	}
	return ""
}

// Valid reports whether the kind is a known document kind.
func (k Kind) Valid() bool {
	return k.Prefix() != ""
}

// IssuedDocument is a finalized record artifact. The reference, kind,
// and person are immutable after creation; only auxiliary metadata
// may change.
type IssuedDocument struct {
	Reference      string     `json:"reference" db:"reference"`
	PersonID       string     `json:"person_id" db:"person_id"`
	Kind           Kind       `json:"kind" db:"kind"`
	Purpose        string     `json:"purpose" db:"purpose"`
	IssueDate      time.Time  `json:"issue_date" db:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	IssuedBy       string     `json:"issued_by" db:"issued_by"`
	RequestID      *string    `json:"request_id,omitempty" db:"request_id"`
	AdditionalInfo *string    `json:"additional_info,omitempty" db:"additional_info"`
	PhotoRef       *string    `json:"photo_ref,omitempty" db:"photo_ref"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Expired reports whether the document has an expiry date in the past.
func (d IssuedDocument) Expired(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

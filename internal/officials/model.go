package officials

import "time"

// Official is an elected or appointed position holder. The roster feeds
// certificate and slip rendering, where the captain signs issued
// documents.
type Official struct {
	ID        int64      `json:"id" db:"id"`
	FullName  string     `json:"full_name" db:"full_name"`
	Position  string     `json:"position" db:"position"`
	TermStart time.Time  `json:"term_start" db:"term_start"`
	TermEnd   *time.Time `json:"term_end,omitempty" db:"term_end"`
	SortOrder int        `json:"sort_order" db:"sort_order"`
	Active    bool       `json:"active" db:"active"`
}

// PositionCaptain is the signatory position on rendered certificates.
const PositionCaptain = "Punong Barangay"

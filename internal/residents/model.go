package residents

import "time"

// Person is a resident demographic record. The ID format BR-YYYY-
// followed by a 10-digit sequence is immutable once assigned.
type Person struct {
	ID                 string     `json:"id" db:"id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	MiddleName         *string    `json:"middle_name,omitempty" db:"middle_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	Suffix             *string    `json:"suffix,omitempty" db:"suffix"`
	BirthDate          time.Time  `json:"birth_date" db:"birth_date"`
	Gender             string     `json:"gender" db:"gender"`
	Address            *string    `json:"address,omitempty" db:"address"`
	ContactNumber      *string    `json:"contact_number,omitempty" db:"contact_number"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	DeactivationReason *string    `json:"deactivation_reason,omitempty" db:"deactivation_reason"`
	IsVoter            bool       `json:"is_voter" db:"is_voter"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	DeactivatedAt      *time.Time `json:"deactivated_at,omitempty" db:"deactivated_at"`
}

// FullName renders the resident's display name.
func (p Person) FullName() string {
	name := p.FirstName
	if p.MiddleName != nil && *p.MiddleName != "" {
		name += " " + *p.MiddleName
	}
	name += " " + p.LastName
	if p.Suffix != nil && *p.Suffix != "" {
		name += " " + *p.Suffix
	}
	return name
}

package residents

import "time"

type CreatePersonRequest struct {
	FirstName     string    `json:"first_name" validate:"required,max=100"`
	MiddleName    *string   `json:"middle_name,omitempty" validate:"omitempty,max=100"`
	LastName      string    `json:"last_name" validate:"required,max=100"`
	Suffix        *string   `json:"suffix,omitempty" validate:"omitempty,max=20"`
	BirthDate     time.Time `json:"birth_date" validate:"required"`
	Gender        string    `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Address       *string   `json:"address,omitempty" validate:"omitempty,max=255"`
	ContactNumber *string   `json:"contact_number,omitempty" validate:"omitempty,max=30"`
	// AllowDuplicate skips the active-duplicate check after staff review.
	AllowDuplicate bool `json:"allow_duplicate,omitempty"`
}

type UpdatePersonRequest struct {
	FirstName     *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	MiddleName    *string    `json:"middle_name,omitempty" validate:"omitempty,max=100"`
	LastName      *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Suffix        *string    `json:"suffix,omitempty" validate:"omitempty,max=20"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Gender        *string    `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
	Address       *string    `json:"address,omitempty" validate:"omitempty,max=255"`
	ContactNumber *string    `json:"contact_number,omitempty" validate:"omitempty,max=30"`
}

type DeactivatePersonRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

type ListPersonsRequest struct {
	Search   *string `json:"search,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsVoter  *bool   `json:"is_voter,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

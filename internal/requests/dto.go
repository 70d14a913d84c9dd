package requests

import "time"

type SubmitRequest struct {
	Kind            string     `json:"kind" validate:"required,oneof=BARANGAY_ID BARANGAY_CLEARANCE CERT_RESIDENCY"`
	Purpose         string     `json:"purpose" validate:"required,max=255"`
	RequestedExpiry *time.Time `json:"requested_expiry,omitempty"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
	AdditionalInfo  *string    `json:"additional_info,omitempty" validate:"omitempty,max=500"`
}

type TransitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ListRequestsRequest struct {
	PersonID *string `json:"person_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

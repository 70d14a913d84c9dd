package voters

import "time"

type SubmitApplicationRequest struct {
	PersonID        string  `json:"person_id" validate:"required"`
	Kind            Kind    `json:"kind" validate:"required,oneof=NEW TRANSFER REACTIVATION"`
	IDFrontRef      string  `json:"id_front_ref" validate:"required"`
	IDBackRef       string  `json:"id_back_ref" validate:"required"`
	TransferDetails *string `json:"transfer_details,omitempty" validate:"omitempty,max=500"`
}

type ReviewRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ScheduleRequest struct {
	AppointmentAt time.Time `json:"appointment_at" validate:"required"`
	Venue         string    `json:"venue" validate:"required,max=255"`
}

type ListApplicationsRequest struct {
	PersonID *string `json:"person_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Kind     *Kind   `json:"kind,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

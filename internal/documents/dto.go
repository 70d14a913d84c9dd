package documents

import "time"

type IssueDocumentRequest struct {
	PersonID       string     `json:"person_id" validate:"required"`
	Kind           Kind       `json:"kind" validate:"required,oneof=BARANGAY_ID BARANGAY_CLEARANCE CERT_RESIDENCY"`
	Purpose        string     `json:"purpose" validate:"required,max=255"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	AdditionalInfo *string    `json:"additional_info,omitempty" validate:"omitempty,max=500"`
	RequestID      *string    `json:"request_id,omitempty"`
	PhotoRef       *string    `json:"photo_ref,omitempty" validate:"omitempty,max=255"`
}

type UpdateMetadataRequest struct {
	AdditionalInfo *string `json:"additional_info,omitempty" validate:"omitempty,max=500"`
	PhotoRef       *string `json:"photo_ref,omitempty" validate:"omitempty,max=255"`
}

type ListDocumentsRequest struct {
	PersonID *string `json:"person_id,omitempty"`
	Kind     *Kind   `json:"kind,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

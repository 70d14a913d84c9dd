package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeExpiryScan is the nightly scan for documents nearing expiry.
	TaskTypeExpiryScan = "document:expiry_scan"
	// TaskTypeAppointmentReminder reminds applicants of tomorrow's
	// verification appointments.
	TaskTypeAppointmentReminder = "voter:appointment_reminder"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with the LGU mail relay once provisioned.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// NewExpiryScanTask constructs the nightly expiry scan task.
func NewExpiryScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpiryScan, nil, asynq.Queue(QueueDefault))
}

// NewAppointmentReminderTask constructs the daily reminder task.
func NewAppointmentReminderTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAppointmentReminder, nil, asynq.Queue(QueueDefault))
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/civreg-ph/civreg/internal/jobs"
	"github.com/civreg-ph/civreg/internal/voters"
)

// ScheduledApplicationStore lists applications in a given state.
type ScheduledApplicationStore interface {
	List(ctx context.Context, req voters.ListApplicationsRequest) ([]voters.VoterApplication, int, error)
}

// AppointmentReminder finds verification appointments booked for the
// next day so the office can chase no-shows ahead of time.
type AppointmentReminder struct {
	store  ScheduledApplicationStore
	logger *slog.Logger
	now    func() time.Time
}

// NewAppointmentReminder constructs an AppointmentReminder.
func NewAppointmentReminder(store ScheduledApplicationStore, logger *slog.Logger) *AppointmentReminder {
	return &AppointmentReminder{store: store, logger: logger, now: time.Now}
}

// DueTomorrow returns scheduled applications whose appointment falls on
// the next calendar day.
func (r *AppointmentReminder) DueTomorrow(ctx context.Context) ([]voters.VoterApplication, error) {
	scheduled := voters.StatusScheduled
	apps, _, err := r.store.List(ctx, voters.ListApplicationsRequest{Status: &scheduled, Limit: 1000})
	if err != nil {
		return nil, err
	}

	now := r.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var due []voters.VoterApplication
	for _, app := range apps {
		if app.AppointmentAt == nil {
			continue
		}
		at := *app.AppointmentAt
		if !at.Before(dayStart) && at.Before(dayEnd) {
			due = append(due, app)
		}
	}
	return due, nil
}

// Handler adapts the reminder to an Asynq handler.
func (r *AppointmentReminder) Handler() asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("voter_appointment_reminder")
		due, err := r.DueTomorrow(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, app := range due {
			r.logger.Info("appointment reminder",
				slog.String("application_id", app.ID),
				slog.String("person_id", app.PersonID),
				slog.Time("appointment_at", *app.AppointmentAt))
		}
		r.logger.Info("appointment reminder finished", slog.Int("due", len(due)))
		return tracker.End(nil)
	}
}

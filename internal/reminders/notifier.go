package reminders

import (
	"context"

	"venuebook/internal/events"
	"venuebook/internal/models"
)

// EventNotifier publishes reminders onto the event bus, where delivery
// channels (mail, webhooks) subscribe.
type EventNotifier struct {
	bus *events.Bus
}

func NewEventNotifier(bus *events.Bus) *EventNotifier {
	return &EventNotifier{bus: bus}
}

type reminderEvent struct {
	BookingID   int64  `json:"booking_id"`
	UserID      int64  `json:"user_id"`
	UserEmail   string `json:"user_email"`
	ServiceName string `json:"service_name"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func (n *EventNotifier) Notify(_ context.Context, user *models.User, svc *models.Service, b *models.Booking) error {
	return n.bus.PublishJSON(events.BookingReminder, reminderEvent{
		BookingID:   b.ID,
		UserID:      user.ID,
		UserEmail:   user.Email,
		ServiceName: svc.ServiceName,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		StartTime:   string(b.StartTime),
		EndTime:     string(b.EndTime),
	})
}

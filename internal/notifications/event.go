// Package notifications publishes booking events and delivers them to users.
package notifications

import (
	"slotbook/pkg/model"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventBookingReviewed      EventType = "booking.reviewed"
)

const SchemaVersion = "1"

type Event struct {
	ID             string              `json:"id"`
	Type           EventType           `json:"type"`
	BookingID      string              `json:"booking_id"`
	CustomerID     string              `json:"customer_id"`
	ProviderID     string              `json:"provider_id"`
	ServiceName    string              `json:"service_name"`
	DateTime       time.Time           `json:"date_time"`
	Status         model.BookingStatus `json:"status"`
	PreviousStatus model.BookingStatus `json:"previous_status,omitempty"`
	Rating         *int                `json:"rating,omitempty"`
	ActorID        string              `json:"actor_id,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

func newEvent(t EventType, b *model.Booking, actor model.Actor) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		ProviderID:  b.ProviderID,
		ServiceName: b.Service.ServiceName,
		DateTime:    b.DateTime,
		Status:      b.Status,
		Rating:      b.Rating,
		ActorID:     actor.ID,
		OccurredAt:  time.Now().UTC(),
	}
}

func BookingCreated(b *model.Booking, actor model.Actor) Event {
	return newEvent(EventBookingCreated, b, actor)
}

func StatusChanged(b *model.Booking, previous model.BookingStatus, actor model.Actor) Event {
	e := newEvent(EventBookingStatusChanged, b, actor)
	e.PreviousStatus = previous
	return e
}

func BookingReviewed(b *model.Booking, actor model.Actor) Event {
	return newEvent(EventBookingReviewed, b, actor)
}

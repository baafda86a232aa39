package notifications

import (
	"context"
	"fmt"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"time"
)

// Sender delivers one rendered notification to a recipient.
type Sender interface {
	Send(ctx context.Context, recipientID string, text string) error
}

type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, recipientID string, text string) error {
	s.log.Info("Notification delivered", "recipient_id", recipientID, "text", text)
	return nil
}

type Delivery struct {
	RecipientID string
	Text        string
}

// Render builds the messages an event produces, one per recipient.
func Render(e Event) []Delivery {
	when := e.DateTime.UTC().Format(time.RFC3339)

	switch e.Type {
	case EventBookingCreated:
		return []Delivery{
			{e.CustomerID, fmt.Sprintf("Your %s booking for %s was received and is awaiting confirmation.", e.ServiceName, when)},
			{e.ProviderID, fmt.Sprintf("New %s booking request for %s.", e.ServiceName, when)},
		}
	case EventBookingStatusChanged:
		text := fmt.Sprintf("Your %s booking for %s is now %s.", e.ServiceName, when, e.Status)
		var out []Delivery
		if e.ActorID != e.CustomerID {
			out = append(out, Delivery{e.CustomerID, text})
		}
		if e.ActorID != e.ProviderID {
			out = append(out, Delivery{e.ProviderID, fmt.Sprintf("The %s booking for %s is now %s.", e.ServiceName, when, e.Status)})
		}
		return out
	case EventBookingReviewed:
		rating := 0
		if e.Rating != nil {
			rating = *e.Rating
		}
		return []Delivery{
			{e.ProviderID, fmt.Sprintf("You received a %d-star review for %s on %s.", rating, e.ServiceName, when)},
		}
	}
	return nil
}

// NewEventHandler decodes booking events from Kafka and sends each rendered
// delivery. Undecodable payloads are permanent failures; send errors are transient.
func NewEventHandler(sender Sender, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event Event
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("deserialization failed", err)
		}

		deliveries := Render(event)
		if len(deliveries) == 0 {
			log.Warn("Ignoring unknown event type", "event_type", event.Type, "event_id", event.ID)
			return nil
		}

		for _, d := range deliveries {
			if err := sender.Send(ctx, d.RecipientID, d.Text); err != nil {
				return kafka.NewTransientError("notification delivery failed", err).
					WithDetail("event_id", event.ID).
					WithDetail("recipient_id", d.RecipientID)
			}
		}
		return nil
	}
}

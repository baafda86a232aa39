package model

import (
	"time"
)

type BookingStatus string

const (
	Pending   BookingStatus = "pending"
	Confirmed BookingStatus = "confirmed"
	Completed BookingStatus = "completed"
	Cancelled BookingStatus = "cancelled"
)

// IsActive reports whether a booking in this status still occupies its slot.
func (s BookingStatus) IsActive() bool {
	return s == Pending || s == Confirmed
}

func (s BookingStatus) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// ServiceSnapshot is copied onto the booking at creation so later edits to
// the provider's service do not rewrite history.
type ServiceSnapshot struct {
	ServiceID   string  `json:"service_id" bson:"service_id"`
	ServiceName string  `json:"service_name" bson:"service_name"`
	Duration    int     `json:"duration" bson:"duration"`
	Price       float64 `json:"price" bson:"price"`
}

type Booking struct {
	ID         string          `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID string          `json:"customer_id" bson:"customer_id"`
	ProviderID string          `json:"provider_id" bson:"provider_id"`
	Service    ServiceSnapshot `json:"service" bson:"service"`
	DateTime   time.Time       `json:"date_time" bson:"date_time"`
	Status     BookingStatus   `json:"status" bson:"status"`
	Active     bool            `json:"-" bson:"active"`
	Notes      string          `json:"notes,omitempty" bson:"notes,omitempty"`
	Rating     *int            `json:"rating,omitempty" bson:"rating,omitempty"`
	Review     string          `json:"review,omitempty" bson:"review,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" bson:"updated_at"`
}

type CreateBookingRequest struct {
	ProviderID string    `json:"provider_id" validate:"required,mongodb"`
	ServiceID  string    `json:"service_id" validate:"required"`
	DateTime   time.Time `json:"date_time" validate:"required"`
	Notes      string    `json:"notes,omitempty" validate:"max=500"`
}

type StatusChangeRequest struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

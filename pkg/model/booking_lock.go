package model

import "time"

// SlotLock is an advisory lock held while a booking for one provider slot is
// being created. The TTL index on expires_at reaps locks left by crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

package model

import "time"

const (
	EventPinCreated     = "pin.created"
	EventUserRegistered = "user.registered"
)

// Event is the envelope published to the broker. Exactly one of Pin or User
// is set, depending on Type.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Pin        *Pin            `json:"pin,omitempty"`
	User       *UserPublicView `json:"user,omitempty"`
}

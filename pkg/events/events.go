// Package events decouples rating aggregation and skill re-evaluation from
// the requests that trigger them. Delivery is at-least-once and handlers are
// idempotent recomputations, so duplicates are harmless.
package events

import (
	"context"

	"github.com/google/uuid"
)

// SubjectShiftVolunteerReviewed carries ShiftVolunteerReviewedEvent payloads.
const SubjectShiftVolunteerReviewed = "shifthub.registration.reviewed"

// ShiftVolunteerReviewedEvent is emitted when an approved volunteer submits
// post-shift feedback. It is the only payload this core exposes to
// downstream collaborators.
type ShiftVolunteerReviewedEvent struct {
	AccountID      uuid.UUID `json:"accountId"`
	ShiftID        uuid.UUID `json:"shiftId"`
	PreviousStatus string    `json:"previousStatus"`
	NextStatus     string    `json:"nextStatus"`
	Rating         float64   `json:"rating"`
}

// Publisher publishes JSON-encoded events to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// Handler consumes a raw event payload. Returning an error signals the bus
// to redeliver where the transport supports it.
type Handler func(ctx context.Context, data []byte) error

// Subscriber registers handlers for a subject.
type Subscriber interface {
	Subscribe(subject string, handler Handler) error
}

// Bus combines publishing and subscribing.
type Bus interface {
	Publisher
	Subscriber
	Close()
}

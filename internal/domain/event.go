package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates delivery event kinds.
type EventType string

const (
	EventSent         EventType = "sent"
	EventDelivered    EventType = "delivered"
	EventOpened       EventType = "opened"
	EventClicked      EventType = "clicked"
	EventBounced      EventType = "bounced"
	EventUnsubscribed EventType = "unsubscribed"
)

// DeliveryEvent is one append-only record of a per-recipient send attempt.
// The dispatch engine appends exactly one "sent" event per successful send;
// auditing and reporting read them back.
type DeliveryEvent struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	CampaignID uuid.UUID         `json:"campaign_id" db:"campaign_id"`
	ContactID  uuid.UUID         `json:"contact_id" db:"contact_id"`
	EventType  EventType         `json:"event_type" db:"event_type"`
	Metadata   map[string]string `json:"metadata" db:"metadata"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContactStatus enumerates the subscription states of a contact.
type ContactStatus string

const (
	ContactSubscribed   ContactStatus = "subscribed"
	ContactUnsubscribed ContactStatus = "unsubscribed"
	ContactBounced      ContactStatus = "bounced"
)

// DefaultSegment is assigned to contacts created without a segment label.
const DefaultSegment = "general"

// Contact represents one recipient in an owner's contact list.
// Exactly one contact exists per (owner, normalized email) pair.
type Contact struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OwnerID        uuid.UUID     `json:"owner_id" db:"owner_id"`
	Email          string        `json:"email" db:"email"`
	FirstName      string        `json:"first_name" db:"first_name"`
	LastName       string        `json:"last_name" db:"last_name"`
	Segment        string        `json:"segment" db:"segment"`
	Status         ContactStatus `json:"status" db:"status"`
	Tags           []string      `json:"tags" db:"tags"`
	SubscribedAt   time.Time     `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt *time.Time    `json:"unsubscribed_at" db:"unsubscribed_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. All contact lookups
// and uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs a cheap structural check on an email address.
// It deliberately stays far short of RFC 5322; the transport is the real
// arbiter of deliverability.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	local, dom := email[:at], email[at+1:]
	if len(local) > 64 || dom == "" {
		return false
	}
	return strings.Contains(dom, ".") && !strings.HasPrefix(dom, ".") && !strings.HasSuffix(dom, ".")
}

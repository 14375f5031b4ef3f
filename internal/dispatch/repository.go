package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// Sentinel errors for dispatch preconditions. All of them are checked before
// any side effect; a dispatch that fails with one of these leaves the
// campaign untouched.
var (
	ErrNotFound        = errors.New("campaign not found")
	ErrTemplateMissing = errors.New("campaign template not found")
	ErrNoRecipients    = errors.New("no subscribed contacts match the campaign segment")
	ErrAlreadySending  = errors.New("campaign is already sending or finished")
)

// Repository defines the data access the engine needs for a dispatch run.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Campaign returns the owner's campaign. Returns ErrNotFound if it
	// doesn't exist or belongs to a different owner.
	Campaign(ctx context.Context, ownerID, id uuid.UUID) (*domain.Campaign, error)

	// Template returns the owner's template. Returns ErrTemplateMissing if
	// it doesn't exist or belongs to a different owner.
	Template(ctx context.Context, ownerID, id uuid.UUID) (*domain.Template, error)

	// Snapshot returns the subscribed contacts matching the segment, fixed
	// at the start of the run. Segment "all" matches every subscribed
	// contact of the owner.
	Snapshot(ctx context.Context, ownerID uuid.UUID, segment string) ([]domain.Contact, error)

	// Claim atomically transitions the campaign to sending if and only if
	// its current status permits dispatch, resetting counters and recording
	// the audience size. Returns false without error when another run holds
	// the campaign.
	Claim(ctx context.Context, id uuid.UUID, totalRecipients int) (bool, error)

	// FlushProgress persists the running sent/failed counters mid-run.
	FlushProgress(ctx context.Context, id uuid.UUID, sent, failed int) error

	// Complete writes the terminal status, timestamps, and final counters.
	Complete(ctx context.Context, id uuid.UUID, status domain.CampaignStatus, sentAt time.Time, sent, failed int) error

	// AppendEvent records one delivery event.
	AppendEvent(ctx context.Context, e *domain.DeliveryEvent) error

	// TouchTemplate stamps the template's last_used_at.
	TouchTemplate(ctx context.Context, templateID uuid.UUID) error
}

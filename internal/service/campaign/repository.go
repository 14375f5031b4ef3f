package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist
	// or belongs to a different owner.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Campaign, error)

	// List returns campaigns matching the filter, ordered by created_at DESC,
	// plus the total matching count before pagination.
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]domain.Campaign, int, error)

	// Create inserts a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error

	// Update modifies a campaign. Only non-nil fields are applied.
	Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) error

	// Delete removes a campaign. Returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// TemplateExists reports whether the owner has a template with this ID.
	TemplateExists(ctx context.Context, ownerID, templateID uuid.UUID) (bool, error)
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string
	Subject     *string
	Description *string
	Segment     *string
	TemplateID  *uuid.UUID
	ScheduledAt *time.Time
	Status      *domain.CampaignStatus
}

package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// Repository defines the data access contract for templates.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single template. Returns ErrNotFound if it doesn't exist
	// or belongs to a different owner.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Template, error)

	// List returns templates matching the filter, ordered by created_at DESC,
	// plus the total matching count before pagination.
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]domain.Template, int, error)

	// Create inserts a new template.
	Create(ctx context.Context, t *domain.Template) error

	// Update modifies a template. Only non-nil fields are applied.
	Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) error

	// Delete removes a template. Returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// TouchLastUsed stamps last_used_at, called when a campaign dispatches
	// with this template.
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}

// ListFilter controls pagination and filtering for template lists.
type ListFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// UpdateFields holds the mutable fields for a template update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string
	Subject     *string
	HTMLContent *string
	TextContent *string
	Category    *string
	IsActive    *bool
	Variables   *[]string
}

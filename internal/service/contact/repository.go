package contact

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// Repository defines the data access contract for contacts.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single contact. Returns ErrNotFound if it doesn't exist
	// or belongs to a different owner.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error)

	// GetByEmail returns the owner's contact with the given normalized email.
	GetByEmail(ctx context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error)

	// List returns contacts matching the filter, ordered by created_at DESC,
	// plus the total matching count before pagination.
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]domain.Contact, int, error)

	// Create inserts a new contact. Returns ErrDuplicate when the owner
	// already has a contact with the same normalized email.
	Create(ctx context.Context, c *domain.Contact) error

	// Update modifies a contact. Only non-nil fields are applied.
	Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) error

	// Delete removes a contact. Returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// UnsubscribeByEmail marks every contact with this normalized email as
	// unsubscribed, across all owners. Returns the number of contacts that
	// changed state.
	UnsubscribeByEmail(ctx context.Context, email string) (int, error)

	// CountBySegment returns contact counts grouped by segment for the owner.
	CountBySegment(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
}

// ListFilter controls pagination and filtering for contact lists.
type ListFilter struct {
	Segment string
	Status  string
	Search  string
	Limit   int
	Offset  int
}

// UpdateFields holds the mutable fields for a contact update.
// Nil fields are not applied.
type UpdateFields struct {
	FirstName *string
	LastName  *string
	Segment   *string
	Status    *domain.ContactStatus
	Tags      *[]string
}

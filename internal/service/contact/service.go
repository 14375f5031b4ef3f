package contact

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/logger"
)

// Service implements contact business logic.
type Service struct {
	repo Repository
}

// NewService creates a contact service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single contact.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns contacts matching the filter.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f ListFilter) ([]domain.Contact, int, error) {
	return s.repo.List(ctx, ownerID, f)
}

// CreateInput holds the fields for creating a new contact.
type CreateInput struct {
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Segment   string   `json:"segment"`
	Tags      []string `json:"tags"`
}

// Create validates and persists a new subscribed contact. The email is
// normalized before storage; a duplicate within the owner returns
// ErrDuplicate.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Contact, error) {
	email := domain.NormalizeEmail(input.Email)
	if !domain.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}

	segment := input.Segment
	if segment == "" {
		segment = domain.DefaultSegment
	}

	now := time.Now().UTC()
	c := &domain.Contact{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Segment:      segment,
		Status:       domain.ContactSubscribed,
		Tags:         input.Tags,
		SubscribedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies mutable contact fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) (*domain.Contact, error) {
	if err := s.repo.Update(ctx, ownerID, id, u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import creates contacts in bulk. Rows with invalid emails or duplicate
// addresses are skipped and counted rather than failing the whole batch.
func (s *Service) Import(ctx context.Context, ownerID uuid.UUID, rows []CreateInput) (*ImportResult, error) {
	result := &ImportResult{}
	for _, row := range rows {
		_, err := s.Create(ctx, ownerID, row)
		switch err {
		case nil:
			result.Imported++
		case ErrInvalidEmail:
			result.Skipped++
			result.Errors = append(result.Errors, "invalid email: "+row.Email)
		case ErrDuplicate:
			result.Skipped++
		default:
			return nil, err
		}
	}
	logger.Info("contact import finished",
		"owner_id", ownerID.String(),
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

// UnsubscribeByEmail marks every contact holding this email address as
// unsubscribed regardless of owner. Unknown addresses and already
// unsubscribed contacts are not errors; the operation is idempotent.
func (s *Service) UnsubscribeByEmail(ctx context.Context, email string) (int, error) {
	email = domain.NormalizeEmail(email)
	if !domain.ValidateEmail(email) {
		return 0, ErrInvalidEmail
	}
	n, err := s.repo.UnsubscribeByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("contact unsubscribed", "email", email, "count", n)
	}
	return n, nil
}

// SegmentCounts returns per-segment contact counts for the owner.
func (s *Service) SegmentCounts(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	return s.repo.CountBySegment(ctx, ownerID)
}

package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// Service implements campaign business logic.
type Service struct {
	repo Repository
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Campaign, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f ListFilter) ([]domain.Campaign, int, error) {
	return s.repo.List(ctx, ownerID, f)
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	TemplateID  uuid.UUID  `json:"templateId"`
	Segment     string     `json:"segment"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// Create validates and persists a new campaign. The referenced template
// must exist and belong to the same owner. A scheduled_at in the input
// creates the campaign in scheduled status, otherwise draft.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalid)
	}
	if input.TemplateID == uuid.Nil {
		return nil, fmt.Errorf("%w: templateId is required", ErrInvalid)
	}

	ok, err := s.repo.TemplateExists(ctx, ownerID, input.TemplateID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTemplateNotFound
	}

	segment := input.Segment
	if segment == "" {
		segment = domain.SegmentAll
	}

	status := domain.CampaignDraft
	if input.ScheduledAt != nil {
		status = domain.CampaignScheduled
	}

	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		TemplateID:  input.TemplateID,
		Name:        input.Name,
		Subject:     input.Subject,
		Description: input.Description,
		Segment:     segment,
		Status:      status,
		ScheduledAt: input.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies mutable campaign fields. Campaigns that have started
// sending, or finished, can no longer be edited. A template change is
// checked against the owner's templates like at creation.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !c.Dispatchable() {
		return nil, ErrNotEditable
	}

	if u.TemplateID != nil {
		ok, err := s.repo.TemplateExists(ctx, ownerID, *u.TemplateID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrTemplateNotFound
		}
	}

	if err := s.repo.Update(ctx, ownerID, id, u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a campaign. A campaign mid-send must not disappear from
// under the dispatch engine.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.Status == domain.CampaignSending {
		return ErrNotDeletable
	}
	return s.repo.Delete(ctx, ownerID, id)
}

// StatsResponse pairs raw counters with derived rates.
type StatsResponse struct {
	CampaignID      uuid.UUID             `json:"campaignId"`
	Status          domain.CampaignStatus `json:"status"`
	TotalRecipients int                   `json:"totalRecipients"`
	SentCount       int                   `json:"sentCount"`
	BounceCount     int                   `json:"bounceCount"`
	ErrorCount      int                   `json:"errorCount"`
	Rates           domain.CampaignStats  `json:"rates"`
}

// Stats returns the campaign's counters and computed rates.
func (s *Service) Stats(ctx context.Context, ownerID, id uuid.UUID) (*StatsResponse, error) {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		CampaignID:      c.ID,
		Status:          c.Status,
		TotalRecipients: c.TotalRecipients,
		SentCount:       c.SentCount,
		BounceCount:     c.BounceCount,
		ErrorCount:      c.ErrorCount,
		Rates:           c.CalculateStats(),
	}, nil
}

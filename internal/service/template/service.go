package template

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/personalize"
)

// Service implements template business logic.
type Service struct {
	repo Repository
}

// NewService creates a template service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single template.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Template, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns templates matching the filter.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f ListFilter) ([]domain.Template, int, error) {
	return s.repo.List(ctx, ownerID, f)
}

// CreateInput holds the fields for creating a new template.
type CreateInput struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
	TextContent string `json:"textContent"`
	Category    string `json:"category"`
}

// Create validates and persists a new template. The variables list is
// derived from the tokens actually present in the content.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Template, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalid)
	}
	if input.HTMLContent == "" {
		return nil, fmt.Errorf("%w: htmlContent is required", ErrInvalid)
	}

	category := input.Category
	if category == "" {
		category = domain.DefaultTemplateCategory
	}

	now := time.Now().UTC()
	t := &domain.Template{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Subject:     input.Subject,
		HTMLContent: input.HTMLContent,
		TextContent: input.TextContent,
		Category:    category,
		IsActive:    true,
		Variables:   DetectVariables(input.Subject, input.HTMLContent, input.TextContent),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update modifies mutable template fields. When content changes, the
// variables list is recomputed from the stored result.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, u UpdateFields) (*domain.Template, error) {
	if err := s.repo.Update(ctx, ownerID, id, u); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if u.Subject != nil || u.HTMLContent != nil || u.TextContent != nil {
		vars := DetectVariables(t.Subject, t.HTMLContent, t.TextContent)
		if err := s.repo.Update(ctx, ownerID, id, UpdateFields{Variables: &vars}); err != nil {
			return nil, err
		}
		t.Variables = vars
	}
	return t, nil
}

// Delete removes a template.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// DetectVariables returns the personalization tokens present in any of the
// given content strings, in a stable order.
func DetectVariables(parts ...string) []string {
	known := []struct {
		token string
		name  string
	}{
		{personalize.TokenFirstName, "firstName"},
		{personalize.TokenLastName, "lastName"},
		{personalize.TokenEmail, "email"},
		{personalize.TokenSegment, "segment"},
	}

	var out []string
	for _, k := range known {
		for _, p := range parts {
			if strings.Contains(p, k.token) {
				out = append(out, k.name)
				break
			}
		}
	}
	return out
}

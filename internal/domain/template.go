package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTemplateCategory is assigned to templates created without a category.
const DefaultTemplateCategory = "general"

// Template is a reusable content document with placeholder tokens.
// Campaigns reference templates by ID; a template must exist and belong to
// the same owner before a campaign may reference it.
type Template struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Subject     string     `json:"subject" db:"subject"`
	HTMLContent string     `json:"html_content" db:"html_content"`
	TextContent string     `json:"text_content" db:"text_content"`
	Category    string     `json:"category" db:"category"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	Variables   []string   `json:"variables" db:"variables"`
	LastUsedAt  *time.Time `json:"last_used_at" db:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

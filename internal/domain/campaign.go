package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignFailed    CampaignStatus = "failed"
	CampaignPaused    CampaignStatus = "paused"
)

// SegmentAll matches every contact regardless of segment label.
const SegmentAll = "all"

// Campaign is the aggregate entity for one bulk send: its configuration
// plus running/final counters. The campaign exclusively owns its counters;
// only the dispatch engine mutates them, at claim and at completion.
type Campaign struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	OwnerID     uuid.UUID      `json:"owner_id" db:"owner_id"`
	TemplateID  uuid.UUID      `json:"template_id" db:"template_id"`
	Name        string         `json:"name" db:"name"`
	Subject     string         `json:"subject" db:"subject"`
	Description string         `json:"description" db:"description"`
	Segment     string         `json:"segment" db:"segment"`
	Status      CampaignStatus `json:"status" db:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at" db:"scheduled_at"`
	SentAt      *time.Time     `json:"sent_at" db:"sent_at"`

	// Counters (read-only outside dispatch)
	TotalRecipients  int `json:"total_recipients" db:"total_recipients"`
	SentCount        int `json:"sent_count" db:"sent_count"`
	BounceCount      int `json:"bounce_count" db:"bounce_count"`
	OpenCount        int `json:"open_count" db:"open_count"`
	ClickCount       int `json:"click_count" db:"click_count"`
	UnsubscribeCount int `json:"unsubscribe_count" db:"unsubscribe_count"`
	ErrorCount       int `json:"error_count" db:"error_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal returns true if the campaign is in a final state.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignSent || c.Status == CampaignFailed
}

// Dispatchable reports whether a dispatch may claim the campaign.
// Sending is entered exclusively through the conditional claim; a campaign
// already in sending (or a terminal state) must be rejected.
func (c *Campaign) Dispatchable() bool {
	switch c.Status {
	case CampaignDraft, CampaignScheduled, CampaignPaused:
		return true
	}
	return false
}

// CampaignStats provides computed campaign rates.
type CampaignStats struct {
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	BounceRate      float64 `json:"bounce_rate"`
	UnsubscribeRate float64 `json:"unsubscribe_rate"`
}

// CalculateStats derives per-send rates from the raw counters.
func (c *Campaign) CalculateStats() CampaignStats {
	stats := CampaignStats{}
	if c.SentCount > 0 {
		stats.OpenRate = float64(c.OpenCount) / float64(c.SentCount) * 100
		stats.ClickRate = float64(c.ClickCount) / float64(c.SentCount) * 100
		stats.BounceRate = float64(c.BounceCount) / float64(c.SentCount) * 100
		stats.UnsubscribeRate = float64(c.UnsubscribeCount) / float64(c.SentCount) * 100
	}
	return stats
}

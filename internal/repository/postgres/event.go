package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// EventRepo reads the delivery event log for reporting.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed event reader.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// ListByCampaign returns the campaign's events, newest first. The join on
// campaigns enforces ownership.
func (r *EventRepo) ListByCampaign(ctx context.Context, ownerID, campaignID uuid.UUID, limit, offset int) ([]domain.DeliveryEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.campaign_id, e.contact_id, e.event_type, e.metadata, e.created_at
		FROM delivery_events e
		JOIN campaigns c ON c.id = e.campaign_id
		WHERE e.campaign_id = $1 AND c.owner_id = $2
		ORDER BY e.created_at DESC
		LIMIT $3 OFFSET $4
	`, campaignID, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryEvent
	for rows.Next() {
		var e domain.DeliveryEvent
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.ContactID, &e.EventType, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByType returns event counts per type for one campaign.
func (r *EventRepo) CountByType(ctx context.Context, ownerID, campaignID uuid.UUID) (map[domain.EventType]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.event_type, COUNT(*)
		FROM delivery_events e
		JOIN campaigns c ON c.id = e.campaign_id
		WHERE e.campaign_id = $1 AND c.owner_id = $2
		GROUP BY e.event_type
	`, campaignID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.EventType]int)
	for rows.Next() {
		var et domain.EventType
		var n int
		if err := rows.Scan(&et, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		out[et] = n
	}
	return out, rows.Err()
}

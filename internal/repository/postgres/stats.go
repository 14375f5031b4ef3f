package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
)

// StatsRepo computes owner-wide resource totals.
type StatsRepo struct{ db *sql.DB }

// NewStatsRepo creates a Postgres-backed stats reader.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Overview returns the owner's totals in a single round trip.
func (r *StatsRepo) Overview(ctx context.Context, ownerID uuid.UUID) (*domain.StatsOverview, error) {
	var o domain.StatsOverview
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM campaigns WHERE owner_id = $1),
			(SELECT COUNT(*) FROM contacts WHERE owner_id = $1),
			(SELECT COUNT(*) FROM templates WHERE owner_id = $1),
			(SELECT COUNT(*)
			 FROM delivery_events e
			 JOIN campaigns c ON c.id = e.campaign_id
			 WHERE c.owner_id = $1)
	`, ownerID).Scan(&o.Campaigns, &o.Contacts, &o.Templates, &o.Events)
	if err != nil {
		return nil, fmt.Errorf("stats overview: %w", err)
	}
	return &o, nil
}

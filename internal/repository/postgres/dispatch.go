package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/dispatch"
	"github.com/ignite/campaigner/internal/domain"
)

// DispatchRepo implements dispatch.Repository against PostgreSQL.
type DispatchRepo struct{ db *sql.DB }

// NewDispatchRepo creates a Postgres-backed dispatch repository.
func NewDispatchRepo(db *sql.DB) *DispatchRepo { return &DispatchRepo{db: db} }

func (r *DispatchRepo) Campaign(ctx context.Context, ownerID, id uuid.UUID) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, dispatch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *DispatchRepo) Template(ctx context.Context, ownerID, id uuid.UUID) (*domain.Template, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, dispatch.ErrTemplateMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (r *DispatchRepo) Snapshot(ctx context.Context, ownerID uuid.UUID, segment string) ([]domain.Contact, error) {
	q := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1 AND status = 'subscribed'`
	args := []interface{}{ownerID}
	if segment != domain.SegmentAll {
		q += " AND segment = $2"
		args = append(args, segment)
	}
	q += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Claim is the only path into sending. The status predicate makes the
// transition atomic: two concurrent dispatches cannot both see an affected
// row.
func (r *DispatchRepo) Claim(ctx context.Context, id uuid.UUID, totalRecipients int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'sending', total_recipients = $2,
		    sent_count = 0, bounce_count = 0, error_count = 0,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('draft','scheduled','paused')
	`, id, totalRecipients)
	if err != nil {
		return false, fmt.Errorf("claim campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *DispatchRepo) FlushProgress(ctx context.Context, id uuid.UUID, sent, failed int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET sent_count = $2, bounce_count = $3, error_count = $3, updated_at = NOW()
		WHERE id = $1
	`, id, sent, failed)
	if err != nil {
		return fmt.Errorf("flush progress: %w", err)
	}
	return nil
}

func (r *DispatchRepo) Complete(ctx context.Context, id uuid.UUID, status domain.CampaignStatus, sentAt time.Time, sent, failed int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = $2, sent_at = $3,
		    sent_count = $4, bounce_count = $5, error_count = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, sentAt, sent, failed)
	if err != nil {
		return fmt.Errorf("complete campaign: %w", err)
	}
	return nil
}

func (r *DispatchRepo) AppendEvent(ctx context.Context, e *domain.DeliveryEvent) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO delivery_events (id, campaign_id, contact_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.CampaignID, e.ContactID, e.EventType, metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *DispatchRepo) TouchTemplate(ctx context.Context, templateID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE templates SET last_used_at = NOW() WHERE id = $1
	`, templateID)
	if err != nil {
		return fmt.Errorf("touch template: %w", err)
	}
	return nil
}

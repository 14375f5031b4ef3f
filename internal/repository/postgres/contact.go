package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactColumns = `id, owner_id, email, first_name, last_name, segment, status,
	       tags, subscribed_at, unsubscribed_at, created_at, updated_at`

func scanContact(row interface{ Scan(...interface{}) error }) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Email, &c.FirstName, &c.LastName, &c.Segment, &c.Status,
		pq.Array(&c.Tags), &c.SubscribedAt, &c.UnsubscribedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContactRepo) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) GetByEmail(ctx context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE owner_id = $1 AND email = $2
	`, ownerID, domain.NormalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact by email: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) List(ctx context.Context, ownerID uuid.UUID, f contact.ListFilter) ([]domain.Contact, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := "WHERE owner_id = $1"
	args := []interface{}{ownerID}
	idx := 2

	if f.Segment != "" {
		where += fmt.Sprintf(" AND segment = $%d", idx)
		args = append(args, f.Segment)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	q := fmt.Sprintf("SELECT %s FROM contacts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		contactColumns, where, idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts
			(id, owner_id, email, first_name, last_name, segment, status,
			 tags, subscribed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`, c.ID, c.OwnerID, c.Email, c.FirstName, c.LastName, c.Segment, c.Status,
		pq.Array(c.Tags), c.SubscribedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return contact.ErrDuplicate
		}
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) Update(ctx context.Context, ownerID, id uuid.UUID, u contact.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Segment != nil {
		add("segment", *u.Segment)
	}
	if u.Status != nil {
		add("status", *u.Status)
		if *u.Status == domain.ContactUnsubscribed {
			sets = append(sets, "unsubscribed_at = NOW()")
		}
	}
	if u.Tags != nil {
		add("tags", pq.Array(*u.Tags))
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d AND owner_id = $%d",
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, ownerID)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM contacts WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) UnsubscribeByEmail(ctx context.Context, email string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts
		SET status = 'unsubscribed', unsubscribed_at = NOW(), updated_at = NOW()
		WHERE email = $1 AND status <> 'unsubscribed'
	`, domain.NormalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("unsubscribe by email: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *ContactRepo) CountBySegment(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT segment, COUNT(*) FROM contacts
		WHERE owner_id = $1
		GROUP BY segment
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by segment: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var segment string
		var n int
		if err := rows.Scan(&segment, &n); err != nil {
			return nil, fmt.Errorf("scan segment count: %w", err)
		}
		out[segment] = n
	}
	return out, rows.Err()
}

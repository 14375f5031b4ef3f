package contact_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/service/contact"
)

// memRepo is an in-memory contact repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	contacts map[uuid.UUID]*domain.Contact
}

func newMemRepo() *memRepo {
	return &memRepo{contacts: make(map[uuid.UUID]*domain.Contact)}
}

func (m *memRepo) Get(_ context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, contact.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contacts {
		if c.OwnerID == ownerID && c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, contact.ErrNotFound
}

func (m *memRepo) List(_ context.Context, ownerID uuid.UUID, f contact.ListFilter) ([]domain.Contact, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	for _, c := range m.contacts {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Segment != "" && c.Segment != f.Segment {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(c.Email, f.Search) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contacts {
		if existing.OwnerID == c.OwnerID && existing.Email == c.Email {
			return contact.ErrDuplicate
		}
	}
	cp := *c
	m.contacts[cp.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, ownerID, id uuid.UUID, u contact.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.Segment != nil {
		c.Segment = *u.Segment
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Tags != nil {
		c.Tags = *u.Tags
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *memRepo) UnsubscribeByEmail(_ context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.contacts {
		if c.Email == email && c.Status != domain.ContactUnsubscribed {
			c.Status = domain.ContactUnsubscribed
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CountBySegment(_ context.Context, ownerID uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, c := range m.contacts {
		if c.OwnerID == ownerID {
			out[c.Segment]++
		}
	}
	return out, nil
}

var testOwner = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func TestCreate(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	c, err := svc.Create(context.Background(), testOwner, contact.CreateInput{
		Email: "  Alice@Example.COM ", FirstName: "Alice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", c.Email)
	}
	if c.Segment != domain.DefaultSegment {
		t.Errorf("expected default segment, got %q", c.Segment)
	}
	if c.Status != domain.ContactSubscribed {
		t.Errorf("expected subscribed, got %s", c.Status)
	}
}

func TestCreateInvalidEmail(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	_, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "not-an-email"})
	if err != contact.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	in := contact.CreateInput{Email: "bob@example.com"}
	if _, err := svc.Create(context.Background(), testOwner, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), testOwner, in)
	if err != contact.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSameEmailDifferentOwners(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	otherOwner := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	in := contact.CreateInput{Email: "shared@example.com"}
	if _, err := svc.Create(context.Background(), testOwner, in); err != nil {
		t.Fatalf("owner 1 create: %v", err)
	}
	if _, err := svc.Create(context.Background(), otherOwner, in); err != nil {
		t.Fatalf("owner 2 create should succeed, got %v", err)
	}
}

func TestImportSkipsBadRows(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "dup@example.com"})

	result, err := svc.Import(context.Background(), testOwner, []contact.CreateInput{
		{Email: "new1@example.com"},
		{Email: "dup@example.com"},
		{Email: "garbage"},
		{Email: "new2@example.com"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}
}

func TestUnsubscribeByEmailCrossOwner(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo)
	otherOwner := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "leave@example.com"})
	svc.Create(context.Background(), otherOwner, contact.CreateInput{Email: "leave@example.com"})

	n, err := svc.UnsubscribeByEmail(context.Background(), "Leave@Example.com")
	if err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 contacts unsubscribed, got %d", n)
	}

	// Second call is a no-op, not an error.
	n, err = svc.UnsubscribeByEmail(context.Background(), "leave@example.com")
	if err != nil {
		t.Fatalf("repeat unsubscribe: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 on repeat, got %d", n)
	}
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	n, err := svc.UnsubscribeByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("unsubscribe unknown: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestUpdate(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "upd@example.com"})

	seg := "vip"
	got, err := svc.Update(context.Background(), testOwner, c.ID, contact.UpdateFields{Segment: &seg})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Segment != "vip" {
		t.Errorf("segment = %q, want vip", got.Segment)
	}
	if got.Email != "upd@example.com" {
		t.Errorf("email changed unexpectedly: %q", got.Email)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := contact.NewService(newMemRepo())
	err := svc.Delete(context.Background(), testOwner, uuid.New())
	if err != contact.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

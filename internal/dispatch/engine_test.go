package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/config"
	"github.com/ignite/campaigner/internal/dispatch"
	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/distlock"
	"github.com/ignite/campaigner/internal/transport"
)

// memRepo is an in-memory dispatch repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*domain.Campaign
	templates map[uuid.UUID]*domain.Template
	contacts  []domain.Contact
	events    []domain.DeliveryEvent
	flushes   int
}

func newMemRepo() *memRepo {
	return &memRepo{
		campaigns: make(map[uuid.UUID]*domain.Campaign),
		templates: make(map[uuid.UUID]*domain.Template),
	}
}

func (m *memRepo) Campaign(_ context.Context, ownerID, id uuid.UUID) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return nil, dispatch.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Template(_ context.Context, ownerID, id uuid.UUID) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return nil, dispatch.ErrTemplateMissing
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) Snapshot(_ context.Context, ownerID uuid.UUID, segment string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	for _, c := range m.contacts {
		if c.OwnerID != ownerID || c.Status != domain.ContactSubscribed {
			continue
		}
		if segment != domain.SegmentAll && c.Segment != segment {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) Claim(_ context.Context, id uuid.UUID, totalRecipients int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return false, nil
	}
	if !c.Dispatchable() {
		return false, nil
	}
	c.Status = domain.CampaignSending
	c.TotalRecipients = totalRecipients
	c.SentCount = 0
	c.BounceCount = 0
	c.ErrorCount = 0
	return true, nil
}

func (m *memRepo) FlushProgress(_ context.Context, id uuid.UUID, sent, failed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	c := m.campaigns[id]
	c.SentCount = sent
	c.BounceCount = failed
	c.ErrorCount = failed
	return nil
}

func (m *memRepo) Complete(_ context.Context, id uuid.UUID, status domain.CampaignStatus, sentAt time.Time, sent, failed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.campaigns[id]
	c.Status = status
	c.SentAt = &sentAt
	c.SentCount = sent
	c.BounceCount = failed
	c.ErrorCount = failed
	return nil
}

func (m *memRepo) AppendEvent(_ context.Context, e *domain.DeliveryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memRepo) TouchTemplate(_ context.Context, _ uuid.UUID) error { return nil }

// ctxCheckRepo rejects writes arriving on a cancelled context, the way a
// real database driver would.
type ctxCheckRepo struct{ *memRepo }

func (r ctxCheckRepo) FlushProgress(ctx context.Context, id uuid.UUID, sent, failed int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.memRepo.FlushProgress(ctx, id, sent, failed)
}

func (r ctxCheckRepo) Complete(ctx context.Context, id uuid.UUID, status domain.CampaignStatus, sentAt time.Time, sent, failed int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.memRepo.Complete(ctx, id, status, sentAt, sent, failed)
}

func (r ctxCheckRepo) AppendEvent(ctx context.Context, e *domain.DeliveryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.memRepo.AppendEvent(ctx, e)
}

// fakeMailer records sends and fails for addresses in failFor.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []transport.Message
	failFor map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, msg *transport.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.To] {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, *msg)
	return nil
}

func (f *fakeMailer) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

// disconnectingMailer cancels the caller's context after the first send,
// like a client dropping the connection mid-batch.
type disconnectingMailer struct {
	fakeMailer
	cancel context.CancelFunc
	once   sync.Once
}

func (m *disconnectingMailer) Send(ctx context.Context, msg *transport.Message) error {
	err := m.fakeMailer.Send(ctx, msg)
	m.once.Do(m.cancel)
	return err
}

var testOwner = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Email.FromEmail = "news@sender.io"
	cfg.Email.FromName = "Newsletter"
	cfg.Email.AppBaseURL = "https://app.example.com"
	cfg.Dispatch.FlushEvery = 2
	return cfg
}

func seedCampaign(repo *memRepo, segment string, status domain.CampaignStatus) *domain.Campaign {
	tpl := &domain.Template{
		ID:          uuid.New(),
		OwnerID:     testOwner,
		Subject:     "Hello {{firstName}}",
		HTMLContent: "<p>Hi {{firstName}}, you are in {{segment}}.</p>",
		TextContent: "Hi {{firstName}}",
	}
	repo.templates[tpl.ID] = tpl

	c := &domain.Campaign{
		ID:         uuid.New(),
		OwnerID:    testOwner,
		TemplateID: tpl.ID,
		Name:       "Test Campaign",
		Segment:    segment,
		Status:     status,
	}
	repo.campaigns[c.ID] = c
	return c
}

func seedContact(repo *memRepo, email, segment string, status domain.ContactStatus) {
	repo.contacts = append(repo.contacts, domain.Contact{
		ID:      uuid.New(),
		OwnerID: testOwner,
		Email:   email,
		Segment: segment,
		Status:  status,
	})
}

func TestDispatchSendsToSegment(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, "vip", domain.CampaignDraft)
	seedContact(repo, "a@example.com", "vip", domain.ContactSubscribed)
	seedContact(repo, "b@example.com", "vip", domain.ContactSubscribed)
	seedContact(repo, "c@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "d@example.com", "vip", domain.ContactUnsubscribed)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sum.TotalRecipients != 2 || sum.SuccessCount != 2 || sum.FailureCount != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	got := repo.campaigns[c.ID]
	if got.Status != domain.CampaignSent {
		t.Errorf("status = %s, want sent", got.Status)
	}
	if got.SentAt == nil {
		t.Error("sentAt not recorded")
	}
	if got.TotalRecipients != 2 || got.SentCount != 2 {
		t.Errorf("counters = total %d sent %d", got.TotalRecipients, got.SentCount)
	}

	recips := mailer.recipients()
	if len(recips) != 2 {
		t.Fatalf("sent %d messages, want 2", len(recips))
	}
	for _, r := range recips {
		if r == "c@example.com" || r == "d@example.com" {
			t.Errorf("sent to out-of-audience contact %s", r)
		}
	}

	if len(repo.events) != 2 {
		t.Errorf("events = %d, want 2", len(repo.events))
	}
	for _, e := range repo.events {
		if e.EventType != domain.EventSent {
			t.Errorf("event type = %s, want sent", e.EventType)
		}
	}
}

func TestDispatchSegmentAll(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	seedContact(repo, "a@example.com", "vip", domain.ContactSubscribed)
	seedContact(repo, "b@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "c@example.com", "general", domain.ContactBounced)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sum.SuccessCount != 2 {
		t.Fatalf("success = %d, want 2 (subscribed only)", sum.SuccessCount)
	}
}

func TestDispatchPersonalizesPerRecipient(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	repo.contacts = append(repo.contacts, domain.Contact{
		ID: uuid.New(), OwnerID: testOwner, Email: "alice@example.com",
		FirstName: "Alice", Segment: "vip", Status: domain.ContactSubscribed,
	})

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)
	if _, err := engine.Dispatch(context.Background(), testOwner, c.ID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	msg := mailer.sent[0]
	if !strings.Contains(msg.HTML, "Hi Alice") || !strings.Contains(msg.HTML, "in vip") {
		t.Errorf("html not personalized: %q", msg.HTML)
	}
	if msg.Headers["List-Unsubscribe"] == "" {
		t.Error("missing List-Unsubscribe header")
	}
	if !strings.Contains(msg.Headers["List-Unsubscribe"], "alice%40example.com") {
		t.Errorf("unsubscribe link not recipient-specific: %q", msg.Headers["List-Unsubscribe"])
	}
	if msg.Headers["List-Unsubscribe-Post"] != "List-Unsubscribe=One-Click" {
		t.Errorf("one-click header = %q", msg.Headers["List-Unsubscribe-Post"])
	}
}

func TestDispatchCountsFailures(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	seedContact(repo, "ok1@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "bad@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "ok2@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch should not fail on recipient errors: %v", err)
	}
	if sum.SuccessCount != 2 || sum.FailureCount != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	got := repo.campaigns[c.ID]
	if got.Status != domain.CampaignSent {
		t.Errorf("status = %s, want sent despite partial failure", got.Status)
	}
	if got.ErrorCount != 1 || got.BounceCount != 1 {
		t.Errorf("failure counters = error %d bounce %d", got.ErrorCount, got.BounceCount)
	}
	// No sent event for the failed recipient.
	if len(repo.events) != 2 {
		t.Errorf("events = %d, want 2", len(repo.events))
	}
}

func TestDispatchAllFailuresStillCompletesAsSent(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	seedContact(repo, "bad@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "worse@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{failFor: map[string]bool{
		"bad@example.com":   true,
		"worse@example.com": true,
	}}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sum.Status != domain.CampaignSent {
		t.Errorf("status = %s, want sent even when every recipient failed", sum.Status)
	}
	if sum.SuccessCount != 0 || sum.FailureCount != 2 {
		t.Errorf("counts = %d/%d, want 0/2", sum.SuccessCount, sum.FailureCount)
	}
	if repo.campaigns[c.ID].Status != domain.CampaignSent {
		t.Errorf("stored status = %s, want sent", repo.campaigns[c.ID].Status)
	}
}

func TestDispatchSurvivesCallerDisconnect(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "b@example.com", "general", domain.ContactSubscribed)
	seedContact(repo, "c@example.com", "general", domain.ContactSubscribed)

	ctx, cancel := context.WithCancel(context.Background())
	mailer := &disconnectingMailer{cancel: cancel}
	engine := dispatch.NewEngine(ctxCheckRepo{repo}, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(ctx, testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sum.SuccessCount != 3 {
		t.Errorf("successCount = %d, want 3 despite the disconnect", sum.SuccessCount)
	}
	if repo.campaigns[c.ID].Status != domain.CampaignSent {
		t.Errorf("stored status = %s, want sent", repo.campaigns[c.ID].Status)
	}
	if repo.campaigns[c.ID].SentCount != 3 {
		t.Errorf("sentCount = %d, want 3", repo.campaigns[c.ID].SentCount)
	}
}

func TestDispatchEmptyAudienceLeavesCampaign(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, "vip", domain.CampaignDraft)
	seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	_, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != dispatch.ErrNoRecipients {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if repo.campaigns[c.ID].Status != domain.CampaignDraft {
		t.Errorf("campaign status changed on empty audience: %s", repo.campaigns[c.ID].Status)
	}
	if len(mailer.recipients()) != 0 {
		t.Error("mail was sent despite empty audience")
	}
}

func TestDispatchMissingTemplateNoSideEffects(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	delete(repo.templates, c.TemplateID)
	seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	_, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != dispatch.ErrTemplateMissing {
		t.Fatalf("expected ErrTemplateMissing, got %v", err)
	}
	if repo.campaigns[c.ID].Status != domain.CampaignDraft {
		t.Error("campaign status changed despite missing template")
	}
}

func TestDispatchRejectsActiveStates(t *testing.T) {
	for _, status := range []domain.CampaignStatus{domain.CampaignSending, domain.CampaignSent, domain.CampaignFailed} {
		repo := newMemRepo()
		c := seedCampaign(repo, domain.SegmentAll, status)
		seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)

		mailer := &fakeMailer{}
		engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

		_, err := engine.Dispatch(context.Background(), testOwner, c.ID)
		if err != dispatch.ErrAlreadySending {
			t.Errorf("status %s: expected ErrAlreadySending, got %v", status, err)
		}
	}
}

func TestDispatchResumesPaused(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignPaused)
	c.SentCount = 7 // stale counters from the interrupted run
	seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sum, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("dispatch of paused campaign: %v", err)
	}
	if sum.SuccessCount != 1 {
		t.Fatalf("success = %d, want 1", sum.SuccessCount)
	}
	if repo.campaigns[c.ID].SentCount != 1 {
		t.Errorf("stale counters not reset: sent = %d", repo.campaigns[c.ID].SentCount)
	}
}

func TestDispatchNotFound(t *testing.T) {
	repo := newMemRepo()
	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	_, err := engine.Dispatch(context.Background(), testOwner, uuid.New())
	if err != dispatch.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDispatchFlushesProgress(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	for i := 0; i < 5; i++ {
		seedContact(repo, string(rune('a'+i))+"@example.com", "general", domain.ContactSubscribed)
	}

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil) // FlushEvery: 2

	if _, err := engine.Dispatch(context.Background(), testOwner, c.ID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if repo.flushes != 2 {
		t.Errorf("flushes = %d, want 2 for 5 recipients at interval 2", repo.flushes)
	}
}

type stubLock struct{ ok bool }

func (s stubLock) Acquire(_ context.Context) (bool, error) { return s.ok, nil }
func (s stubLock) Release(_ context.Context) error         { return nil }

func TestDispatchLockHeldElsewhere(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)
	seedContact(repo, "a@example.com", "general", domain.ContactSubscribed)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), func(string) distlock.DistLock {
		return stubLock{ok: false}
	})

	_, err := engine.Dispatch(context.Background(), testOwner, c.ID)
	if err != dispatch.ErrAlreadySending {
		t.Fatalf("expected ErrAlreadySending when lock is held, got %v", err)
	}
	if repo.campaigns[c.ID].Status != domain.CampaignDraft {
		t.Error("campaign claimed despite held lock")
	}
}

func TestSendTest(t *testing.T) {
	repo := newMemRepo()
	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	err := engine.SendTest(context.Background(), "QA@Example.com", "Check layout", "<p>hi</p>", "")
	if err != nil {
		t.Fatalf("send test: %v", err)
	}
	msg := mailer.sent[0]
	if msg.To != "qa@example.com" {
		t.Errorf("to = %q, want normalized", msg.To)
	}
	if msg.Subject != "[TEST] Check layout" {
		t.Errorf("subject = %q", msg.Subject)
	}
}

func TestSendTestValidation(t *testing.T) {
	engine := dispatch.NewEngine(newMemRepo(), &fakeMailer{}, testConfig(), nil)
	if err := engine.SendTest(context.Background(), "nope", "s", "<p>h</p>", ""); err == nil {
		t.Error("expected error for invalid address")
	}
	if err := engine.SendTest(context.Background(), "ok@example.com", "", "<p>h</p>", ""); err == nil {
		t.Error("expected error for empty subject")
	}
}

func TestSendTemplateTestLeavesTokensVerbatim(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	if err := engine.SendTemplateTest(context.Background(), testOwner, c.TemplateID, "qa@example.com"); err != nil {
		t.Fatalf("template test: %v", err)
	}
	msg := mailer.sent[0]
	if msg.Subject != "[TEST] Hello {{firstName}}" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "{{firstName}}") {
		t.Errorf("html = %q, tokens should stay literal", msg.HTML)
	}
}

func TestSendTemplateTestMissingTemplate(t *testing.T) {
	engine := dispatch.NewEngine(newMemRepo(), &fakeMailer{}, testConfig(), nil)
	err := engine.SendTemplateTest(context.Background(), testOwner, uuid.New(), "qa@example.com")
	if !errors.Is(err, dispatch.ErrTemplateMissing) {
		t.Errorf("err = %v, want ErrTemplateMissing", err)
	}
}

func TestSendPersonalizedTest(t *testing.T) {
	repo := newMemRepo()
	c := seedCampaign(repo, domain.SegmentAll, domain.CampaignDraft)

	mailer := &fakeMailer{}
	engine := dispatch.NewEngine(repo, mailer, testConfig(), nil)

	sample := &domain.Contact{Email: "qa@example.com", FirstName: "Quinn", Segment: "vip"}
	result, err := engine.SendPersonalizedTest(context.Background(), testOwner, c.TemplateID, "qa@example.com", sample)
	if err != nil {
		t.Fatalf("personalized test: %v", err)
	}
	if !strings.HasPrefix(result.Subject, "[TEST] ") {
		t.Errorf("subject = %q, missing prefix", result.Subject)
	}
	if result.PersonalizedWith["firstName"] != "Quinn" {
		t.Errorf("personalizedWith = %v", result.PersonalizedWith)
	}
	if !strings.Contains(mailer.sent[0].HTML, "Hi Quinn") {
		t.Errorf("html not personalized: %q", mailer.sent[0].HTML)
	}
}

func TestSendPersonalizedTestMissingTemplate(t *testing.T) {
	engine := dispatch.NewEngine(newMemRepo(), &fakeMailer{}, testConfig(), nil)
	_, err := engine.SendPersonalizedTest(context.Background(), testOwner, uuid.New(), "qa@example.com", nil)
	if err != dispatch.ErrTemplateMissing {
		t.Fatalf("expected ErrTemplateMissing, got %v", err)
	}
}

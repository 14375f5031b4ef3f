package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ignite/campaigner/internal/config"
	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/metrics"
	"github.com/ignite/campaigner/internal/personalize"
	"github.com/ignite/campaigner/internal/pkg/distlock"
	"github.com/ignite/campaigner/internal/pkg/logger"
	"github.com/ignite/campaigner/internal/transport"
)

// LockFactory builds a distributed lock for the given key. A nil factory
// disables cross-process locking; the conditional claim still guards
// against double dispatch.
type LockFactory func(key string) distlock.DistLock

// Engine runs campaign dispatches.
type Engine struct {
	repo    Repository
	mailer  transport.Mailer
	cfg     *config.Config
	limiter *rate.Limiter
	newLock LockFactory
}

// NewEngine creates a dispatch engine. The send rate and flush interval come
// from cfg.Dispatch.
func NewEngine(repo Repository, mailer transport.Mailer, cfg *config.Config, newLock LockFactory) *Engine {
	limit := rate.Inf
	if cfg.Dispatch.SendRatePerSecond > 0 {
		limit = rate.Limit(cfg.Dispatch.SendRatePerSecond)
	}
	return &Engine{
		repo:    repo,
		mailer:  mailer,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		newLock: newLock,
	}
}

// Summary reports the outcome of one dispatch run.
type Summary struct {
	CampaignID      uuid.UUID             `json:"campaignId"`
	Status          domain.CampaignStatus `json:"status"`
	TotalRecipients int                   `json:"totalRecipients"`
	SuccessCount    int                   `json:"successCount"`
	FailureCount    int                   `json:"failureCount"`
}

// Dispatch sends the campaign to every subscribed contact in its segment.
//
// Preconditions (missing campaign, missing template, empty audience) are
// checked before anything is written, so a failed precondition leaves the
// campaign in its prior status. Once claimed, the run always terminates the
// campaign as sent, with per-recipient failures recorded in its counters.
func (e *Engine) Dispatch(ctx context.Context, ownerID, campaignID uuid.UUID) (*Summary, error) {
	c, err := e.repo.Campaign(ctx, ownerID, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.Dispatchable() {
		return nil, ErrAlreadySending
	}

	tpl, err := e.repo.Template(ctx, ownerID, c.TemplateID)
	if err != nil {
		return nil, err
	}

	contacts, err := e.repo.Snapshot(ctx, ownerID, c.Segment)
	if err != nil {
		return nil, fmt.Errorf("snapshot audience: %w", err)
	}
	if len(contacts) == 0 {
		return nil, ErrNoRecipients
	}

	if e.newLock != nil {
		lock := e.newLock("dispatch:campaign:" + campaignID.String())
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire dispatch lock: %w", err)
		}
		if !ok {
			return nil, ErrAlreadySending
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	claimed, err := e.repo.Claim(ctx, campaignID, len(contacts))
	if err != nil {
		return nil, fmt.Errorf("claim campaign: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadySending
	}

	// A claimed campaign must run to completion even if the caller goes
	// away; a cancelled request context would otherwise strand it in
	// sending with no way to re-dispatch.
	runCtx := context.WithoutCancel(ctx)

	logger.Info("campaign dispatch started",
		"campaign_id", campaignID.String(),
		"segment", c.Segment,
		"recipients", len(contacts))

	start := time.Now()
	subject := c.Subject
	if subject == "" {
		subject = tpl.Subject
	}

	flushEvery := e.cfg.Dispatch.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 25
	}

	var sent, failed int
	for i := range contacts {
		contact := &contacts[i]

		if err := e.limiter.Wait(runCtx); err != nil {
			break
		}

		rendered := personalize.Render(subject, tpl.HTMLContent, tpl.TextContent, contact)
		msg := e.buildMessage(contact.Email, rendered, map[string]string{
			"campaign_id": campaignID.String(),
			"contact_id":  contact.ID.String(),
		})

		if err := e.mailer.Send(runCtx, msg); err != nil {
			failed++
			metrics.RecordSend(false)
			logger.Warn("recipient send failed",
				"campaign_id", campaignID.String(),
				"contact_email", contact.Email,
				"error", err.Error())
		} else {
			sent++
			metrics.RecordSend(true)
			e.appendSentEvent(runCtx, campaignID, contact)
		}

		if (sent+failed)%flushEvery == 0 {
			if err := e.repo.FlushProgress(runCtx, campaignID, sent, failed); err != nil {
				logger.Warn("progress flush failed",
					"campaign_id", campaignID.String(),
					"error", err.Error())
			}
		}
	}

	status := domain.CampaignSent

	if err := e.repo.Complete(runCtx, campaignID, status, time.Now().UTC(), sent, failed); err != nil {
		return nil, fmt.Errorf("finalize campaign: %w", err)
	}
	if err := e.repo.TouchTemplate(runCtx, c.TemplateID); err != nil {
		logger.Warn("template touch failed", "template_id", c.TemplateID.String(), "error", err.Error())
	}

	metrics.RecordDispatch(string(status), time.Since(start).Seconds())
	logger.Info("campaign dispatch finished",
		"campaign_id", campaignID.String(),
		"status", string(status),
		"sent", sent,
		"failed", failed,
		"duration", time.Since(start).String())

	return &Summary{
		CampaignID:      campaignID,
		Status:          status,
		TotalRecipients: len(contacts),
		SuccessCount:    sent,
		FailureCount:    failed,
	}, nil
}

// buildMessage assembles the transport message with one-click unsubscribe
// headers pointing at the public unsubscribe endpoint.
func (e *Engine) buildMessage(to string, r personalize.Rendered, metadata map[string]string) *transport.Message {
	email := e.cfg.Email
	msg := &transport.Message{
		To:        to,
		FromEmail: email.FromEmail,
		FromName:  email.FromName,
		ReplyTo:   email.ReplyToOrFrom(),
		Subject:   r.Subject,
		HTML:      r.HTML,
		Text:      r.Text,
		Metadata:  metadata,
	}
	if email.AppBaseURL != "" {
		unsubURL := email.AppBaseURL + "/unsubscribe?email=" + url.QueryEscape(to)
		msg.Headers = map[string]string{
			"List-Unsubscribe":      "<" + unsubURL + ">",
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		}
	}
	return msg
}

func (e *Engine) appendSentEvent(ctx context.Context, campaignID uuid.UUID, contact *domain.Contact) {
	event := &domain.DeliveryEvent{
		ID:         uuid.New(),
		CampaignID: campaignID,
		ContactID:  contact.ID,
		EventType:  domain.EventSent,
		Metadata:   map[string]string{"segment": contact.Segment},
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.repo.AppendEvent(ctx, event); err != nil {
		// The send already happened; a lost audit row must not fail the run.
		logger.Warn("delivery event append failed",
			"campaign_id", campaignID.String(),
			"error", err.Error())
	}
}

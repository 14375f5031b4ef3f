package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/personalize"
)

// TestSubjectPrefix marks test sends so they are unmistakable in an inbox.
const TestSubjectPrefix = "[TEST] "

// SendTest delivers a one-off message to a single address without touching
// any campaign. The subject is prefixed so the recipient can tell it apart
// from a production send.
func (e *Engine) SendTest(ctx context.Context, to, subject, html, text string) error {
	if !domain.ValidateEmail(to) {
		return fmt.Errorf("invalid recipient address")
	}
	if subject == "" || html == "" {
		return fmt.Errorf("subject and html are required")
	}

	rendered := personalize.Rendered{
		Subject: TestSubjectPrefix + subject,
		HTML:    html,
		Text:    text,
	}
	return e.mailer.Send(ctx, e.buildMessage(domain.NormalizeEmail(to), rendered, nil))
}

// SendTemplateTest delivers the owner's stored template verbatim, tokens
// left as literal text, to a single address.
func (e *Engine) SendTemplateTest(ctx context.Context, ownerID, templateID uuid.UUID, to string) error {
	if !domain.ValidateEmail(to) {
		return fmt.Errorf("invalid recipient address")
	}

	tpl, err := e.repo.Template(ctx, ownerID, templateID)
	if err != nil {
		return err
	}

	rendered := personalize.Rendered{
		Subject: TestSubjectPrefix + tpl.Subject,
		HTML:    tpl.HTMLContent,
		Text:    tpl.TextContent,
	}
	return e.mailer.Send(ctx, e.buildMessage(domain.NormalizeEmail(to), rendered, nil))
}

// TestSend reports what a personalized test send produced.
type TestSend struct {
	To               string            `json:"to"`
	Subject          string            `json:"subject"`
	PersonalizedWith map[string]string `json:"personalizedWith"`
}

// SendPersonalizedTest renders the owner's template against a sample contact
// and delivers the result to a single address. The sample may be nil, in
// which case only the recipient email and the default segment are available
// to the tokens.
func (e *Engine) SendPersonalizedTest(ctx context.Context, ownerID, templateID uuid.UUID, to string, sample *domain.Contact) (*TestSend, error) {
	if !domain.ValidateEmail(to) {
		return nil, fmt.Errorf("invalid recipient address")
	}
	to = domain.NormalizeEmail(to)

	tpl, err := e.repo.Template(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}

	if sample == nil {
		sample = &domain.Contact{Email: to}
	}
	fields := personalize.ContactFields(sample)

	rendered := personalize.RenderTemplate(tpl, sample)
	rendered.Subject = TestSubjectPrefix + rendered.Subject

	if err := e.mailer.Send(ctx, e.buildMessage(to, rendered, nil)); err != nil {
		return nil, err
	}

	return &TestSend{
		To:      to,
		Subject: rendered.Subject,
		PersonalizedWith: map[string]string{
			"firstName": fields.FirstName,
			"lastName":  fields.LastName,
			"email":     fields.Email,
			"segment":   fields.Segment,
		},
	}, nil
}

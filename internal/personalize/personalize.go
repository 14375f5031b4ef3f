// Package personalize renders template content for a specific contact by
// replacing a fixed set of placeholder tokens. Rendering is a pure function:
// no side effects, safe for concurrent use, idempotent for the same inputs.
package personalize

import (
	"strings"

	"github.com/ignite/campaigner/internal/domain"
)

// Placeholder tokens recognized in subject, HTML, and text content.
// Every occurrence is replaced; content with no tokens passes through
// unchanged.
const (
	TokenFirstName = "{{firstName}}"
	TokenLastName  = "{{lastName}}"
	TokenEmail     = "{{email}}"
	TokenSegment   = "{{segment}}"
)

// Rendered holds the personalized output for one contact.
type Rendered struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Fields captures the substitution values actually used for a render.
// Returned alongside personalized test sends so callers can see what the
// contact's tokens resolved to.
type Fields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Segment   string `json:"segment"`
}

// ContactFields extracts substitution values from a contact. Missing fields
// degrade to the empty string; an empty segment defaults to "general".
func ContactFields(c *domain.Contact) Fields {
	f := Fields{}
	if c == nil {
		f.Segment = domain.DefaultSegment
		return f
	}
	f.FirstName = c.FirstName
	f.LastName = c.LastName
	f.Email = c.Email
	f.Segment = c.Segment
	if f.Segment == "" {
		f.Segment = domain.DefaultSegment
	}
	return f
}

// Render replaces every occurrence of each placeholder token in subject,
// html, and text independently with the contact's fields.
func Render(subject, html, text string, c *domain.Contact) Rendered {
	f := ContactFields(c)
	return Rendered{
		Subject: apply(subject, f),
		HTML:    apply(html, f),
		Text:    apply(text, f),
	}
}

// RenderTemplate renders a template's subject and content for a contact.
func RenderTemplate(t *domain.Template, c *domain.Contact) Rendered {
	return Render(t.Subject, t.HTMLContent, t.TextContent, c)
}

func apply(s string, f Fields) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	r := strings.NewReplacer(
		TokenFirstName, f.FirstName,
		TokenLastName, f.LastName,
		TokenEmail, f.Email,
		TokenSegment, f.Segment,
	)
	return r.Replace(s)
}

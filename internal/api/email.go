package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/httputil"
)

// SendTestEmail delivers a one-off test message. With a templateId the
// stored template goes out verbatim, tokens untouched; otherwise the inline
// subject/html/text are used.
func (h *Handlers) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var body struct {
		To         string     `json:"to"`
		TemplateID *uuid.UUID `json:"templateId"`
		Subject    string     `json:"subject"`
		HTML       string     `json:"html"`
		Text       string     `json:"text"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	if body.TemplateID != nil {
		if err := h.engine.SendTemplateTest(r.Context(), ownerID, *body.TemplateID, body.To); err != nil {
			respondServiceError(w, err)
			return
		}
	} else if err := h.engine.SendTest(r.Context(), body.To, body.Subject, body.HTML, body.Text); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Message(w, "test email sent")
}

// SendPersonalizedTestEmail renders a stored template against sample contact
// fields and delivers the result.
func (h *Handlers) SendPersonalizedTestEmail(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var body struct {
		To         string     `json:"to"`
		TemplateID uuid.UUID  `json:"templateId"`
		ContactID  *uuid.UUID `json:"contactId"`
		FirstName  string     `json:"firstName"`
		LastName   string     `json:"lastName"`
		Segment    string     `json:"segment"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if body.TemplateID == uuid.Nil {
		httputil.BadRequest(w, "templateId is required")
		return
	}

	var sample *domain.Contact
	if body.ContactID != nil {
		c, err := h.contacts.Get(r.Context(), ownerID, *body.ContactID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		sample = c
	} else {
		sample = &domain.Contact{
			Email:     domain.NormalizeEmail(body.To),
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Segment:   body.Segment,
		}
	}

	result, err := h.engine.SendPersonalizedTest(r.Context(), ownerID, body.TemplateID, body.To, sample)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, result)
}

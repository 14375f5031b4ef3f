package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/httputil"
	"github.com/ignite/campaigner/internal/service/campaign"
)

func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	limit, offset := pagination(r)
	q := r.URL.Query()

	items, total, err := h.campaigns.List(r.Context(), ownerID, campaign.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, listResponse{Items: items, Total: total})
}

func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	c, err := h.campaigns.Create(r.Context(), ownerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.campaigns.Get(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Name        *string                `json:"name"`
		Subject     *string                `json:"subject"`
		Description *string                `json:"description"`
		Segment     *string                `json:"segment"`
		TemplateID  *uuid.UUID             `json:"templateId"`
		ScheduledAt *time.Time             `json:"scheduledAt"`
		Status      *domain.CampaignStatus `json:"status"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	if body.Status != nil {
		// The only status edits allowed through the API are schedule flips;
		// sending/sent/failed belong to the dispatch engine.
		switch *body.Status {
		case domain.CampaignDraft, domain.CampaignScheduled, domain.CampaignPaused:
		default:
			httputil.BadRequest(w, "status can only be set to draft, scheduled, or paused")
			return
		}
	}

	c, err := h.campaigns.Update(r.Context(), ownerID, id, campaign.UpdateFields{
		Name:        body.Name,
		Subject:     body.Subject,
		Description: body.Description,
		Segment:     body.Segment,
		TemplateID:  body.TemplateID,
		ScheduledAt: body.ScheduledAt,
		Status:      body.Status,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.campaigns.Delete(r.Context(), ownerID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Message(w, "campaign deleted")
}

// SendCampaign runs a full dispatch synchronously and returns the summary.
func (h *Handlers) SendCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	summary, err := h.engine.Dispatch(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	c, err := h.campaigns.Get(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"message":  "campaign dispatched",
		"campaign": c,
		"results":  summary,
	})
}

func (h *Handlers) CampaignStats(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	stats, err := h.campaigns.Stats(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, stats)
}

func (h *Handlers) CampaignEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)

	events, err := h.events.ListByCampaign(r.Context(), ownerID, id, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	counts, err := h.events.CountByType(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"events": events,
		"counts": counts,
	})
}

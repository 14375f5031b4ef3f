package api

import (
	"net/http"

	"github.com/ignite/campaigner/internal/pkg/httputil"
	"github.com/ignite/campaigner/internal/service/template"
)

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	limit, offset := pagination(r)
	q := r.URL.Query()

	items, total, err := h.templates.List(r.Context(), ownerID, template.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, listResponse{Items: items, Total: total})
}

func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var input template.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	t, err := h.templates.Create(r.Context(), ownerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	t, err := h.templates.Get(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Subject     *string `json:"subject"`
		HTMLContent *string `json:"htmlContent"`
		TextContent *string `json:"textContent"`
		Category    *string `json:"category"`
		IsActive    *bool   `json:"isActive"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	t, err := h.templates.Update(r.Context(), ownerID, id, template.UpdateFields{
		Name:        body.Name,
		Subject:     body.Subject,
		HTMLContent: body.HTMLContent,
		TextContent: body.TextContent,
		Category:    body.Category,
		IsActive:    body.IsActive,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.templates.Delete(r.Context(), ownerID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Message(w, "template deleted")
}

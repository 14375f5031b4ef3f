package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/httputil"
	"github.com/ignite/campaigner/internal/service/contact"
)

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// listResponse is the common envelope for paginated collections.
type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	limit, offset := pagination(r)
	q := r.URL.Query()

	items, total, err := h.contacts.List(r.Context(), ownerID, contact.ListFilter{
		Segment: q.Get("segment"),
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, listResponse{Items: items, Total: total})
}

func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var input contact.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	c, err := h.contacts.Create(r.Context(), ownerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) ImportContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	var body struct {
		Contacts []contact.CreateInput `json:"contacts"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if len(body.Contacts) == 0 {
		httputil.BadRequest(w, "contacts array is empty")
		return
	}

	result, err := h.contacts.Import(r.Context(), ownerID, body.Contacts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, result)
}

func (h *Handlers) ContactSegments(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	counts, err := h.contacts.SegmentCounts(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, counts)
}

func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.contacts.Get(r.Context(), ownerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		FirstName *string               `json:"firstName"`
		LastName  *string               `json:"lastName"`
		Segment   *string               `json:"segment"`
		Status    *domain.ContactStatus `json:"status"`
		Tags      *[]string             `json:"tags"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	c, err := h.contacts.Update(r.Context(), ownerID, id, contact.UpdateFields{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Segment:   body.Segment,
		Status:    body.Status,
		Tags:      body.Tags,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.contacts.Delete(r.Context(), ownerID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Message(w, "contact deleted")
}

package api

import (
	"net/http"
	"time"

	"github.com/ignite/campaigner/internal/pkg/httputil"
	"github.com/ignite/campaigner/internal/service/campaign"
)

// StatsOverview returns the owner's resource totals.
func (h *Handlers) StatsOverview(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	overview, err := h.stats.Overview(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, overview)
}

// StatsActivity returns the owner's most recently created campaigns.
func (h *Handlers) StatsActivity(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromRequest(r)

	items, _, err := h.campaigns.List(r.Context(), ownerID, campaign.ListFilter{Limit: 5})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	type activity struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Status    string `json:"status"`
		CreatedAt string `json:"createdAt"`
	}
	out := make([]activity, 0, len(items))
	for _, c := range items {
		out = append(out, activity{
			ID:        c.ID.String(),
			Name:      c.Name,
			Status:    string(c.Status),
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	httputil.OK(w, out)
}

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/dispatch"
	"github.com/ignite/campaigner/internal/domain"
	"github.com/ignite/campaigner/internal/pkg/httputil"
	"github.com/ignite/campaigner/internal/service/campaign"
	"github.com/ignite/campaigner/internal/service/contact"
	"github.com/ignite/campaigner/internal/service/template"
)

// EventReader reads the delivery event log for reporting endpoints.
type EventReader interface {
	ListByCampaign(ctx context.Context, ownerID, campaignID uuid.UUID, limit, offset int) ([]domain.DeliveryEvent, error)
	CountByType(ctx context.Context, ownerID, campaignID uuid.UUID) (map[domain.EventType]int, error)
}

// StatsReader computes owner-wide resource totals.
type StatsReader interface {
	Overview(ctx context.Context, ownerID uuid.UUID) (*domain.StatsOverview, error)
}

// Handlers holds the service dependencies for all HTTP handlers.
type Handlers struct {
	contacts  *contact.Service
	templates *template.Service
	campaigns *campaign.Service
	engine    *dispatch.Engine
	events    EventReader
	stats     StatsReader
}

// NewHandlers wires the services into one handler set.
func NewHandlers(
	contacts *contact.Service,
	templates *template.Service,
	campaigns *campaign.Service,
	engine *dispatch.Engine,
	events EventReader,
	stats StatsReader,
) *Handlers {
	return &Handlers{
		contacts:  contacts,
		templates: templates,
		campaigns: campaigns,
		engine:    engine,
		events:    events,
		stats:     stats,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// respondServiceError translates service-layer sentinel errors into HTTP
// status codes. Unknown errors become opaque 500s.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contact.ErrNotFound),
		errors.Is(err, template.ErrNotFound),
		errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, dispatch.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, contact.ErrDuplicate),
		errors.Is(err, contact.ErrInvalidEmail),
		errors.Is(err, campaign.ErrInvalid),
		errors.Is(err, campaign.ErrTemplateNotFound),
		errors.Is(err, template.ErrInvalid),
		errors.Is(err, dispatch.ErrTemplateMissing),
		errors.Is(err, dispatch.ErrNoRecipients):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, campaign.ErrNotEditable),
		errors.Is(err, campaign.ErrNotDeletable),
		errors.Is(err, dispatch.ErrAlreadySending):
		httputil.Error(w, http.StatusConflict, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

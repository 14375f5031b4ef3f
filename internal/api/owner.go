package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/campaigner/internal/pkg/httputil"
)

type ctxKey int

const ownerIDKey ctxKey = iota

// OwnerIDFromRequest extracts the caller's owner ID. Priority: context (set
// by RequireOwner), X-Owner-ID header, owner_id query parameter.
func OwnerIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	if id, ok := r.Context().Value(ownerIDKey).(uuid.UUID); ok {
		return id, true
	}
	if s := r.Header.Get("X-Owner-ID"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			return id, true
		}
	}
	if s := r.URL.Query().Get("owner_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// RequireOwner rejects requests that carry no valid owner identity and
// stores the parsed ID in the request context for handlers downstream.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := OwnerIDFromRequest(r)
		if !ok {
			httputil.Unauthorized(w, "missing or invalid X-Owner-ID")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerIDKey, id)))
	})
}

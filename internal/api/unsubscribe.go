package api

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/ignite/campaigner/internal/metrics"
	"github.com/ignite/campaigner/internal/pkg/logger"
)

const unsubscribePageTemplate = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Unsubscribed</title>
	<style>
		body { font-family: sans-serif; max-width: 480px; margin: 80px auto; text-align: center; color: #333; }
		h1 { font-size: 1.4em; }
	</style>
</head>
<body>
	<h1>%s</h1>
	<p>%s</p>
</body>
</html>`

func unsubscribeEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return email
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			return body.Email
		}
		return ""
	}
	return r.PostFormValue("email")
}

// UnsubscribePage handles the link a recipient clicks in an email. It
// performs the unsubscribe and always renders a confirmation page; an
// unknown address must not leak whether it was ever on a list.
func (h *Handlers) UnsubscribePage(w http.ResponseWriter, r *http.Request) {
	email := unsubscribeEmail(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, unsubscribePageTemplate,
			"Missing email address",
			"The unsubscribe link is incomplete. Please use the link from your email.")
		return
	}

	n, err := h.contacts.UnsubscribeByEmail(r.Context(), email)
	if err != nil {
		logger.Warn("unsubscribe failed", "error", err.Error())
	}
	if n > 0 {
		metrics.Unsubscribes.Add(float64(n))
	}

	fmt.Fprintf(w, unsubscribePageTemplate,
		"You have been unsubscribed",
		html.EscapeString(email)+" will no longer receive emails from us.")
}

// Unsubscribe handles RFC 8058 one-click POST unsubscribes from mail
// clients. The response is plain text; no body is expected or parsed beyond
// the email parameter.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email := unsubscribeEmail(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, "missing email")
		return
	}

	n, err := h.contacts.UnsubscribeByEmail(r.Context(), email)
	if err != nil {
		logger.Warn("unsubscribe failed", "error", err.Error())
	}
	if n > 0 {
		metrics.Unsubscribes.Add(float64(n))
	}

	fmt.Fprintln(w, "unsubscribed")
}

// Package template implements reusable email template management.
//
// Templates hold subject and body content with personalization tokens.
// Campaigns reference them by ID; the campaign service verifies ownership
// before accepting a reference.
package template

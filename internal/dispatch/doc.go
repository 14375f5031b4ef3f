// Package dispatch implements the campaign send engine.
//
// A dispatch run claims the campaign, snapshots its audience, renders one
// personalized message per recipient, and hands each to the transport at a
// paced rate. Per-recipient failures are counted, never fatal; the run
// always drives the campaign to a terminal status.
package dispatch

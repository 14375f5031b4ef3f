// Package campaign implements campaign lifecycle management.
//
// The service layer contains the business logic for creating, editing, and
// deleting campaigns and for reporting their stats. Dispatching a campaign
// is the dispatch engine's job; this package never sends mail.
//
// Repository implementations live in repository/postgres/.
package campaign

// Package contact implements contact list management.
//
// The service layer owns validation, email normalization, and the
// one-contact-per-owner-and-email rule. It depends on the repository
// interface defined in this package and should never import from api/.
//
// Repository implementations live in repository/postgres/.
package contact

// Package postgres implements the service and dispatch repository
// interfaces against PostgreSQL using database/sql and lib/pq.
package postgres

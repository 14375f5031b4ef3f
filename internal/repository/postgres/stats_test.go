package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestStatsOverview(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewStatsRepo(db)
	owner := uuid.New()

	mock.ExpectQuery("SELECT").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"campaigns", "contacts", "templates", "events"}).
			AddRow(3, 120, 7, 450))

	o, err := repo.Overview(context.Background(), owner)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.Campaigns != 3 || o.Contacts != 120 || o.Templates != 7 || o.Events != 450 {
		t.Fatalf("overview = %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

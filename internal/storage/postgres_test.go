package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

func TestPostgres_InitSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgres(db).InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	seen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)
	venue := "Legislature Grounds"
	fireworks := event.New("Socrata", "Canada Day Fireworks", &start)
	fireworks.Venue = &venue
	noID := &event.Event{Source: "Eventbrite", Title: "Comedy Night", City: "Edmonton", Province: "AB"}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO events"))
	prep.ExpectExec().
		WithArgs(fireworks.ID, "Socrata", "Canada Day Fireworks", start, nil, venue, nil,
			"Edmonton", "AB", nil, nil, nil, sqlmock.AnyArg(), nil, nil, nil, "run-1", seen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(event.GenerateID("Eventbrite", "Comedy Night", nil), "Eventbrite", "Comedy Night",
			nil, nil, nil, nil, "Edmonton", "AB", nil, nil, nil, sqlmock.AnyArg(), nil, nil, nil, "run-1", seen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := NewPostgres(db)
	p.now = func() time.Time { return seen }

	require.NoError(t, p.SaveEvents(context.Background(), "run-1", []*event.Event{fireworks, noID}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveEvents_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewPostgres(db).SaveEvents(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveEvents_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO events"))
	prep.ExpectExec().WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = NewPostgres(db).SaveEvents(context.Background(), "run-1", []*event.Event{event.New("Socrata", "Broken", nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

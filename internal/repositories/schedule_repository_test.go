package repositories

import (
	"context"
	"errors"
	"testing"

	"intercity/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReserveSeatsTxSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin error: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := ScheduleRepository{DB: db}
	if err := repo.ReserveSeatsTx(context.Background(), tx, 7, 3); err != nil {
		t.Fatalf("reserve error: %v", err)
	}
}

func TestReserveSeatsTxNoMatchingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin error: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := ScheduleRepository{DB: db}
	err = repo.ReserveSeatsTx(context.Background(), tx, 7, 3)
	if !errors.Is(err, ErrSeatsUnavailable) {
		t.Fatalf("expected ErrSeatsUnavailable, got %v", err)
	}
}

func TestReleaseSeatsTxUnderflow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin error: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := ScheduleRepository{DB: db}
	err = repo.ReleaseSeatsTx(context.Background(), tx, 7, 3)
	if !errors.Is(err, ErrLedgerUnderflow) {
		t.Fatalf("expected ErrLedgerUnderflow, got %v", err)
	}
}

func TestUpdateGuardsBookedSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := ScheduleRepository{DB: db}
	err = repo.Update(models.Schedule{ID: 7, RouteFrom: "Jakarta", RouteTo: "Bandung", TotalSeats: 10})
	if !errors.Is(err, ErrTotalBelowBooked) {
		t.Fatalf("expected ErrTotalBelowBooked, got %v", err)
	}
}

func TestTransitionStatusLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE schedules SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := ScheduleRepository{DB: db}
	err = repo.TransitionStatus(7, "scheduled", "boarding")
	if !errors.Is(err, ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
}

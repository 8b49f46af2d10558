package services

import (
	"context"
	"testing"
	"time"

	"intercity/internal/domain"
	"intercity/internal/domain/models"
	"intercity/internal/queue"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateScheduleRejectsPastDeparture(t *testing.T) {
	svc := ScheduleService{Now: fixedNow}

	_, err := svc.Create(CreateScheduleInput{
		OperatorID:   3,
		RouteFrom:    "Jakarta",
		RouteTo:      "Bandung",
		DepartureAt:  testNow.Add(-time.Hour),
		PricePerSeat: 150000,
		TotalSeats:   40,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for past departure, got %v", err)
	}
}

func TestCreateScheduleStartsFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(9, 1))

	svc := ScheduleService{DB: db, Now: fixedNow}

	sched, err := svc.Create(CreateScheduleInput{
		OperatorID:   3,
		RouteFrom:    "Jakarta",
		RouteTo:      "Bandung",
		DepartureAt:  testNow.Add(48 * time.Hour),
		PricePerSeat: 150000,
		TotalSeats:   40,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if sched.ID != 9 {
		t.Fatalf("id not set from insert, got %d", sched.ID)
	}
	if sched.BookedSeats != 0 || sched.AvailableSeats != 40 {
		t.Fatalf("new schedule should start empty: booked=%d available=%d", sched.BookedSeats, sched.AvailableSeats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionStatusBlocksCancelWithActiveSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 3, 37, models.ScheduleStatusScheduled))

	svc := ScheduleService{DB: db, Now: fixedNow}

	_, err = svc.TransitionStatus(9, models.ScheduleStatusCancelled)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for direct cancel with booked seats, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionStatusRejectsUndefinedEdge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 0, 40, models.ScheduleStatusScheduled))

	svc := ScheduleService{DB: db, Now: fixedNow}

	_, err = svc.TransitionStatus(9, models.ScheduleStatusArrived)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for scheduled -> arrived, got %v", err)
	}
}

func TestCancelScheduleSweepsActiveBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 10, 30, models.ScheduleStatusScheduled))
	// Close the schedule before sweeping so no new booking can slip in.
	mock.ExpectExec("UPDATE schedules SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	active := sqlmock.NewRows(bookingCols)
	for i := int64(1); i <= 5; i++ {
		active.AddRow(
			i, "IC2603101200000000"+string(rune('0'+i))+"001", int64(5), int64(9), int64(3), "Jakarta", "Bandung",
			"Budi Santoso", "budi@example.com", "+628111222333", 2, nil, nil,
			int64(150000), int64(300000), "pending", models.BookingStatusConfirmed, nil, nil,
			nil, testNow.Add(-time.Hour), testNow.Add(-time.Hour),
		)
	}
	mock.ExpectQuery("ORDER BY id ASC").WillReturnRows(active)

	for i := int64(1); i <= 5; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WillReturnRows(bookingRow(i, 2, models.BookingStatusConfirmed))
		mock.ExpectExec("UPDATE bookings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE schedules").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	notifier := newFakeNotifier()
	svc := ScheduleService{DB: db, Notifier: notifier, RequestID: "test", Now: fixedNow}

	result, err := svc.CancelSchedule(context.Background(), 9)
	if err != nil {
		t.Fatalf("cancel schedule error: %v", err)
	}
	if result.Cancelled != 5 {
		t.Fatalf("expected 5 cancelled bookings, got %d", result.Cancelled)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failures)
	}

	for i := 0; i < 5; i++ {
		n := notifier.wait(t)
		if n.Type != queue.EventBookingCancelled {
			t.Fatalf("expected %s event, got %s", queue.EventBookingCancelled, n.Type)
		}
		if n.Data.Reason != "schedule cancelled by operator" {
			t.Fatalf("notification reason wrong: %q", n.Data.Reason)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelScheduleOnlyFromCancellableStates(t *testing.T) {
	for _, status := range []string{models.ScheduleStatusBoarding, models.ScheduleStatusDeparted, models.ScheduleStatusArrived} {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock init error: %v", err)
		}

		mock.ExpectQuery("FROM schedules WHERE id").
			WillReturnRows(scheduleRow(9, 40, 10, 30, status))

		svc := ScheduleService{DB: db, Now: fixedNow}

		_, err = svc.CancelSchedule(context.Background(), 9)
		if !domain.IsConflict(err) {
			t.Fatalf("%s schedule: expected conflict, got %v", status, err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s schedule: unmet expectations: %v", status, err)
		}
		db.Close()
	}
}

func TestCancelScheduleFromDelayed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 0, 40, models.ScheduleStatusDelayed))
	mock.ExpectExec("UPDATE schedules SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(bookingCols))

	svc := ScheduleService{DB: db, Now: fixedNow}

	result, err := svc.CancelSchedule(context.Background(), 9)
	if err != nil {
		t.Fatalf("delayed schedule should be cancellable: %v", err)
	}
	if result.Cancelled != 0 || len(result.Failures) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelScheduleAlreadyCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 0, 40, models.ScheduleStatusCancelled))

	svc := ScheduleService{DB: db, Now: fixedNow}

	_, err = svc.CancelSchedule(context.Background(), 9)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateScheduleImmutableAfterDeparture(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 12, 28, models.ScheduleStatusDeparted))

	svc := ScheduleService{DB: db, Now: fixedNow}

	price := int64(200000)
	_, err = svc.Update(9, UpdateScheduleInput{PricePerSeat: &price})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for departed schedule, got %v", err)
	}
}

func TestUpdateScheduleTotalSeatsBelowBooked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 12, 28, models.ScheduleStatusScheduled))

	svc := ScheduleService{DB: db, Now: fixedNow}

	seats := 10
	_, err = svc.Update(9, UpdateScheduleInput{TotalSeats: &seats})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for shrinking below booked, got %v", err)
	}
}

func TestUpdateScheduleLostShrinkRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 12, 28, models.ScheduleStatusScheduled))
	// A concurrent booking raised booked_seats past the new total after the
	// read; the guarded UPDATE matches no row.
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc := ScheduleService{DB: db, Now: fixedNow}

	seats := 15
	_, err = svc.Update(9, UpdateScheduleInput{TotalSeats: &seats})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for lost shrink race, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileFlagsMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 4, 36, models.ScheduleStatusScheduled))
	mock.ExpectQuery("SUM\\(seat_count\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(3))

	svc := ScheduleService{DB: db, Now: fixedNow}

	report, err := svc.Reconcile(9)
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if report.Consistent {
		t.Fatalf("4 booked vs 3 reserved should be inconsistent")
	}
	if report.BookedSeats != 4 || report.ReservedSeats != 3 {
		t.Fatalf("report payload wrong: %+v", report)
	}
}

func TestReconcileConsistentLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(9, 40, 4, 36, models.ScheduleStatusScheduled))
	mock.ExpectQuery("SUM\\(seat_count\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(4))

	svc := ScheduleService{DB: db, Now: fixedNow}

	report, err := svc.Reconcile(9)
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if !report.Consistent {
		t.Fatalf("ledger should reconcile: %+v", report)
	}
}

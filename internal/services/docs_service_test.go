package services

import (
	"bytes"
	"testing"
	"time"

	"intercity/internal/domain/models"
	"intercity/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBuildETicketPDF(t *testing.T) {
	booking := models.Booking{
		ID:             42,
		Reference:      "IC26031012000000001001",
		PassengerName:  "Budi Santoso",
		PassengerPhone: "+628111222333",
		RouteFrom:      "Jakarta",
		RouteTo:        "Bandung",
		SeatCount:      2,
		SeatNumbers:    "A1,A2",
		TotalAmount:    300000,
		PaymentStatus:  models.PaymentStatusPending,
		Status:         models.BookingStatusConfirmed,
	}
	sched := models.Schedule{
		ID:          7,
		DepartureAt: time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC),
	}

	pdf, filename, err := buildETicketPDF(booking, sched)
	if err != nil {
		t.Fatalf("buildETicketPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("buildETicketPDF returned empty data")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	if filename != "eticket-ic26031012000000001001.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestETicketLoadsBookingAndSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id").
		WillReturnRows(bookingRow(42, 2, models.BookingStatusConfirmed))
	mock.ExpectQuery("FROM schedules WHERE id").
		WillReturnRows(scheduleRow(7, 40, 2, 38, models.ScheduleStatusScheduled))

	svc := DocsService{
		BookingRepo:  repositories.BookingRepository{DB: db},
		ScheduleRepo: repositories.ScheduleRepository{DB: db},
		RequestID:    "test",
	}

	pdf, filename, err := svc.ETicket(42, 5)
	if err != nil {
		t.Fatalf("ETicket returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	if filename == "" {
		t.Fatalf("empty filename")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBuildETicketPDFMissingSchedule(t *testing.T) {
	booking := models.Booking{Reference: "IC26031012000000002002", SeatCount: 1, Status: models.BookingStatusConfirmed}

	pdf, _, err := buildETicketPDF(booking, models.Schedule{})
	if err != nil {
		t.Fatalf("buildETicketPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("buildETicketPDF returned empty data")
	}
}

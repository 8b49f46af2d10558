package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "intercity/internal/config"
	"intercity/internal/domain"
	"intercity/internal/domain/models"
	"intercity/internal/queue"
	"intercity/internal/repositories"
	"intercity/internal/utils"
)

// Notifier publishes outbound events. Implementations must tolerate being
// called after the booking transaction already committed: failures are
// logged, never propagated to the caller.
type Notifier interface {
	Publish(ctx context.Context, n queue.Notification) error
}

// txTimeout bounds how long a booking or cancellation may wait on the store
// before the caller gets a retryable timeout instead of a hang.
const txTimeout = 5 * time.Second

// BookingService is the transaction coordinator: the only writer allowed to
// mutate ledger seat counts or create/cancel bookings. Every create/cancel
// runs as one atomic unit; nothing partially persists on failure.
type BookingService struct {
	DB           *sql.DB
	ScheduleRepo repositories.ScheduleRepository
	BookingRepo  repositories.BookingRepository
	OperatorRepo repositories.OperatorRepository
	Notifier     Notifier
	RequestID    string
	Now          func() time.Time
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) schedules() repositories.ScheduleRepository {
	if s.ScheduleRepo.DB != nil {
		return s.ScheduleRepo
	}
	return repositories.ScheduleRepository{DB: s.db()}
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s BookingService) operators() repositories.OperatorRepository {
	if s.OperatorRepo.DB != nil {
		return s.OperatorRepo
	}
	return repositories.OperatorRepository{DB: s.db()}
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type CreateBookingInput struct {
	ScheduleID      int64
	UserID          int64
	FullName        string
	Email           string
	Phone           string
	SeatCount       int
	SeatNumbers     []string
	SpecialRequests string
}

func (in *CreateBookingInput) normalize() error {
	in.FullName = utils.NormalizeName(in.FullName)
	in.Email = utils.NormalizeEmail(in.Email)
	in.Phone = utils.NormalizePhone(in.Phone)

	if in.ScheduleID <= 0 {
		return domain.ValidationError{Field: "scheduleId", Msg: "required"}
	}
	if in.FullName == "" {
		return domain.ValidationError{Field: "fullName", Msg: "required"}
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return domain.ValidationError{Field: "email", Msg: "valid email required"}
	}
	if in.Phone == "" {
		return domain.ValidationError{Field: "phone", Msg: "required"}
	}
	if in.SeatCount < 1 || in.SeatCount > models.MaxSeatsPerBooking {
		return domain.ValidationError{
			Field: "numberOfSeats",
			Msg:   fmt.Sprintf("must be between 1 and %d", models.MaxSeatsPerBooking),
		}
	}
	if len(in.SeatNumbers) > 0 && len(in.SeatNumbers) != in.SeatCount {
		return domain.ValidationError{Field: "seatNumbers", Msg: "must match numberOfSeats when provided"}
	}
	return nil
}

// Create runs the booking algorithm as one atomic unit: load the schedule,
// validate, insert the reservation, decrement the ledger, commit. The
// availability check in the conditional decrement is what makes two
// concurrent requests for the last seats safe; at most one can commit.
func (s BookingService) Create(ctx context.Context, in CreateBookingInput) (models.Booking, error) {
	var zero models.Booking
	if err := in.normalize(); err != nil {
		return zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return zero, s.coordinatorErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	sched, err := s.schedules().GetTx(ctx, tx, in.ScheduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return zero, s.coordinatorErr(err)
	}

	now := s.now()
	if sched.Status != models.ScheduleStatusScheduled {
		return zero, domain.ValidationError{Field: "schedule", Msg: "not open for booking"}
	}
	if !sched.DepartureAt.After(now) {
		return zero, domain.ValidationError{Field: "schedule", Msg: "departure date has passed"}
	}
	if in.SeatCount > sched.AvailableSeats {
		return zero, domain.CapacityError{Requested: in.SeatCount, Available: sched.AvailableSeats}
	}

	booking := models.Booking{
		UserID:          in.UserID,
		ScheduleID:      sched.ID,
		OperatorID:      sched.OperatorID,
		RouteFrom:       sched.RouteFrom,
		RouteTo:         sched.RouteTo,
		PassengerName:   in.FullName,
		PassengerEmail:  in.Email,
		PassengerPhone:  in.Phone,
		SeatCount:       in.SeatCount,
		SeatNumbers:     utils.JoinSeatList(in.SeatNumbers),
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		PricePerSeat:    sched.PricePerSeat,
		TotalAmount:     sched.PricePerSeat * int64(in.SeatCount),
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.BookingStatusConfirmed,
		CreatedAt:       now,
	}

	if err := s.insertWithReference(ctx, tx, &booking); err != nil {
		return zero, err
	}

	if err := s.schedules().ReserveSeatsTx(ctx, tx, sched.ID, in.SeatCount); err != nil {
		if errors.Is(err, repositories.ErrSeatsUnavailable) {
			// Lost the race between our read and the decrement. Re-read to
			// tell a capacity loss apart from a status change.
			if cur, rerr := s.schedules().GetTx(ctx, tx, sched.ID); rerr == nil && cur.Status != models.ScheduleStatusScheduled {
				return zero, domain.ValidationError{Field: "schedule", Msg: "not open for booking"}
			} else if rerr == nil {
				return zero, domain.CapacityError{Requested: in.SeatCount, Available: cur.AvailableSeats}
			}
			return zero, domain.CapacityError{Requested: in.SeatCount, Available: 0}
		}
		return zero, s.coordinatorErr(err)
	}

	if err := tx.Commit(); err != nil {
		return zero, s.coordinatorErr(err)
	}

	// Post-commit side effects. Neither may affect the booking result.
	if err := s.operators().IncrementTotalBookings(sched.OperatorID); err != nil {
		utils.LogEvent(s.RequestID, "booking", "operator_counter_failed", err.Error())
	}
	s.notify(queue.Notification{
		UserID: booking.UserID,
		Type:   queue.EventBookingConfirmed,
		Title:  "Booking confirmed",
		Body:   fmt.Sprintf("Booking %s for %s to %s is confirmed.", booking.Reference, booking.RouteFrom, booking.RouteTo),
		Data: queue.NotificationData{
			BookingID:        booking.ID,
			BookingReference: booking.Reference,
		},
	})

	utils.LogEvent(s.RequestID, "booking", "created",
		fmt.Sprintf("booking_id=%d reference=%s schedule_id=%d seats=%d", booking.ID, booking.Reference, sched.ID, in.SeatCount))
	return booking, nil
}

// insertWithReference retries the insert on a reference unique-key collision,
// regenerating the code each attempt. Collisions regenerate, they never fail
// the booking until the bounded retries run out.
func (s BookingService) insertWithReference(ctx context.Context, tx *sql.Tx, b *models.Booking) error {
	var lastErr error
	for attempt := 0; attempt < referenceMaxRetries; attempt++ {
		b.Reference = NewBookingReference()
		lastErr = s.bookings().CreateTx(ctx, tx, b)
		if lastErr == nil {
			return nil
		}
		if !repositories.IsDuplicateEntry(lastErr) {
			return s.coordinatorErr(lastErr)
		}
	}
	return domain.ReferenceExhaustedError{Attempts: referenceMaxRetries}
}

// Cancel is the mirror of Create: mark the reservation cancelled and restore
// ledger capacity in the same transaction. userID scopes the lookup to the
// requesting passenger; 0 is the operator/system path.
func (s BookingService) Cancel(ctx context.Context, bookingID, userID int64, reason string) (models.Booking, error) {
	var zero models.Booking
	if bookingID <= 0 {
		return zero, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return zero, s.coordinatorErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	booking, err := s.bookings().GetForUpdateTx(ctx, tx, bookingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return zero, s.coordinatorErr(err)
	}

	if booking.Status == models.BookingStatusCancelled {
		return zero, domain.ValidationError{Field: "status", Msg: "booking already cancelled"}
	}
	if !booking.Cancellable() {
		return zero, domain.ValidationError{Field: "status", Msg: "booking is not cancellable"}
	}

	now := s.now()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "cancelled by passenger"
	}

	if err := s.bookings().MarkCancelledTx(ctx, tx, booking.ID, reason, now); err != nil {
		return zero, s.coordinatorErr(err)
	}

	if err := s.schedules().ReleaseSeatsTx(ctx, tx, booking.ScheduleID, booking.SeatCount); err != nil {
		if errors.Is(err, repositories.ErrLedgerUnderflow) {
			utils.LogAlert(s.RequestID, "booking", "ledger_underflow",
				fmt.Sprintf("booking_id=%d schedule_id=%d seats=%d", booking.ID, booking.ScheduleID, booking.SeatCount))
			return zero, domain.CorruptionError{
				Msg: fmt.Sprintf("release of %d seat(s) on schedule %d would underflow the ledger", booking.SeatCount, booking.ScheduleID),
				Err: err,
			}
		}
		return zero, s.coordinatorErr(err)
	}

	if err := tx.Commit(); err != nil {
		return zero, s.coordinatorErr(err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationDate = &now
	booking.CancellationReason = reason

	s.notify(queue.Notification{
		UserID: booking.UserID,
		Type:   queue.EventBookingCancelled,
		Title:  "Booking cancelled",
		Body:   fmt.Sprintf("Booking %s has been cancelled.", booking.Reference),
		Data: queue.NotificationData{
			BookingID:        booking.ID,
			BookingReference: booking.Reference,
			Reason:           reason,
		},
	})

	utils.LogEvent(s.RequestID, "booking", "cancelled",
		fmt.Sprintf("booking_id=%d reference=%s seats=%d", booking.ID, booking.Reference, booking.SeatCount))
	return booking, nil
}

// CheckIn moves a confirmed booking to checked_in. A single conditional
// update carries both the state check and the write.
func (s BookingService) CheckIn(ctx context.Context, bookingID int64) (models.Booking, error) {
	var zero models.Booking
	if bookingID <= 0 {
		return zero, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}

	if _, err := s.bookings().GetByIDForUser(bookingID, 0); errors.Is(err, sql.ErrNoRows) {
		return zero, domain.NotFoundError{Resource: "booking", Err: err}
	} else if err != nil {
		return zero, domain.InternalError{Err: err}
	}

	if err := s.bookings().CheckIn(bookingID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return zero, domain.ValidationError{Field: "status", Msg: "check-in is only allowed from confirmed"}
		}
		return zero, domain.InternalError{Err: err}
	}

	b, err := s.bookings().GetByIDForUser(bookingID, 0)
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	return b, nil
}

// Get returns a booking scoped to the requesting passenger.
func (s BookingService) Get(bookingID, userID int64) (models.Booking, error) {
	b, err := s.bookings().GetByIDForUser(bookingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return b, domain.InternalError{Err: err}
	}
	return b, nil
}

func (s BookingService) notify(n queue.Notification) {
	if s.Notifier == nil {
		return
	}
	notifier := s.Notifier
	requestID := s.RequestID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := notifier.Publish(ctx, n); err != nil {
			utils.LogEvent(requestID, "booking", "notify_failed", err.Error())
		}
	}()
}

func (s BookingService) coordinatorErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TimeoutError{Err: err}
	}
	return domain.InternalError{Err: err}
}

package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "intercity/internal/config"
	"intercity/internal/domain/models"
)

// BookingRepository wraps DB access for the bookings table. Creation and
// cancellation always run inside the coordinator transaction; single-row
// lifecycle updates (check-in) use conditional updates instead.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, reference, user_id, schedule_id, operator_id, route_from, route_to,
	passenger_name, passenger_email, passenger_phone, seat_count, seat_numbers, special_requests,
	price_per_seat, total_amount, payment_status, status, checked_in_at, cancellation_date,
	cancellation_reason, created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b            models.Booking
		seatNumbers  sql.NullString
		requests     sql.NullString
		checkedInAt  sql.NullTime
		cancelledAt  sql.NullTime
		cancelReason sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.ScheduleID, &b.OperatorID, &b.RouteFrom, &b.RouteTo,
		&b.PassengerName, &b.PassengerEmail, &b.PassengerPhone, &b.SeatCount, &seatNumbers, &requests,
		&b.PricePerSeat, &b.TotalAmount, &b.PaymentStatus, &b.Status, &checkedInAt, &cancelledAt,
		&cancelReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return b, err
	}
	b.SeatNumbers = seatNumbers.String
	b.SpecialRequests = requests.String
	b.CancellationReason = cancelReason.String
	if checkedInAt.Valid {
		t := checkedInAt.Time
		b.CheckedInAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancellationDate = &t
	}
	return b, nil
}

// CreateTx inserts a booking within the coordinator transaction. A unique-key
// violation on reference comes back raw so the caller can regenerate and
// retry; everything else aborts the transaction.
func (r BookingRepository) CreateTx(ctx context.Context, tx *sql.Tx, b *models.Booking) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO bookings
		(reference, user_id, schedule_id, operator_id, route_from, route_to,
		 passenger_name, passenger_email, passenger_phone, seat_count, seat_numbers, special_requests,
		 price_per_seat, total_amount, payment_status, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?)`,
		b.Reference, b.UserID, b.ScheduleID, b.OperatorID, b.RouteFrom, b.RouteTo,
		b.PassengerName, b.PassengerEmail, b.PassengerPhone, b.SeatCount, b.SeatNumbers, b.SpecialRequests,
		b.PricePerSeat, b.TotalAmount, b.PaymentStatus, b.Status, b.CreatedAt,
	)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

// GetByIDForUser loads a booking scoped to its owner. userID 0 skips the
// ownership filter; only operator/system paths pass that.
func (r BookingRepository) GetByIDForUser(id, userID int64) (models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	args := []any{id}
	if userID > 0 {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	return scanBooking(r.db().QueryRow(query, args...))
}

// GetForUpdateTx loads and row-locks a booking inside the cancellation
// transaction so the lifecycle check and the update see the same state.
func (r BookingRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id, userID int64) (models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	args := []any{id}
	if userID > 0 {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, query, args...))
}

// MarkCancelledTx flips status to cancelled with the cancellation metadata.
// The status guard keeps a lost race from cancelling twice.
func (r BookingRepository) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id int64, reason string, at time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE bookings
		SET status = 'cancelled', cancellation_date = ?, cancellation_reason = NULLIF(?, ''), updated_at = ?
		WHERE id = ? AND status IN ('pending', 'confirmed', 'checked_in')`,
		at, reason, at, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CheckIn moves confirmed -> checked_in in one conditional update.
func (r BookingRepository) CheckIn(id int64, at time.Time) error {
	res, err := r.db().Exec(`UPDATE bookings
		SET status = 'checked_in', checked_in_at = ?, updated_at = ?
		WHERE id = ? AND status = 'confirmed'`,
		at, at, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// ListActiveBySchedule returns bookings still holding seats on a schedule.
func (r BookingRepository) ListActiveBySchedule(scheduleID int64) ([]models.Booking, error) {
	rows, err := r.db().Query(`SELECT `+bookingColumns+` FROM bookings
		WHERE schedule_id = ? AND status IN ('confirmed', 'checked_in') ORDER BY id ASC`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SumActiveSeatsBySchedule totals seats across seat-holding bookings. Used
// to reconcile against the ledger's booked_seats.
func (r BookingRepository) SumActiveSeatsBySchedule(scheduleID int64) (int, error) {
	var sum int
	err := r.db().QueryRow(`SELECT COALESCE(SUM(seat_count), 0) FROM bookings
		WHERE schedule_id = ? AND status IN ('confirmed', 'checked_in', 'completed')`, scheduleID).Scan(&sum)
	return sum, err
}

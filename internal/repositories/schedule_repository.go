package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "intercity/internal/config"
	"intercity/internal/domain/models"
)

// ScheduleRepository wraps DB access for the schedules table. Seat counts
// move only through ReserveSeatsTx / ReleaseSeatsTx so the ledger invariant
// is enforced in a single statement.
type ScheduleRepository struct {
	DB *sql.DB
}

func (r ScheduleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const scheduleColumns = `id, operator_id, route_from, route_to, departure_at, price_per_seat,
	total_seats, booked_seats, available_seats, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID, &s.OperatorID, &s.RouteFrom, &s.RouteTo, &s.DepartureAt, &s.PricePerSeat,
		&s.TotalSeats, &s.BookedSeats, &s.AvailableSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r ScheduleRepository) Create(s *models.Schedule) error {
	res, err := r.db().Exec(`INSERT INTO schedules
		(operator_id, route_from, route_to, departure_at, price_per_seat, total_seats, booked_seats, available_seats, status)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		s.OperatorID, s.RouteFrom, s.RouteTo, s.DepartureAt, s.PricePerSeat,
		s.TotalSeats, s.TotalSeats, s.Status,
	)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r ScheduleRepository) GetByID(id int64) (models.Schedule, error) {
	row := r.db().QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	return scanSchedule(row)
}

// GetTx loads a schedule inside the coordinator transaction.
func (r ScheduleRepository) GetTx(ctx context.Context, tx *sql.Tx, id int64) (models.Schedule, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	return scanSchedule(row)
}

// ReserveSeatsTx decrements capacity with a single conditional update. The
// availability check and the decrement are one statement, so two concurrent
// reservations can never both win the last seats: the loser matches zero
// rows and gets ErrSeatsUnavailable.
func (r ScheduleRepository) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, scheduleID int64, seats int) error {
	res, err := tx.ExecContext(ctx, `UPDATE schedules
		SET booked_seats = booked_seats + ?, available_seats = available_seats - ?, updated_at = ?
		WHERE id = ? AND status = 'scheduled' AND available_seats >= ?`,
		seats, seats, time.Now().UTC(), scheduleID, seats,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSeatsUnavailable
	}
	return nil
}

// ReleaseSeatsTx restores capacity for a cancelled reservation. The guard on
// booked_seats is deliberate: a release that would go negative means the
// ledger and the reservations disagree, and must surface, not be floored.
func (r ScheduleRepository) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, scheduleID int64, seats int) error {
	res, err := tx.ExecContext(ctx, `UPDATE schedules
		SET booked_seats = booked_seats - ?, available_seats = available_seats + ?, updated_at = ?
		WHERE id = ? AND booked_seats >= ?`,
		seats, seats, time.Now().UTC(), scheduleID, seats,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLedgerUnderflow
	}
	return nil
}

// Update rewrites the mutable fields. available_seats is recomputed from the
// new total so the invariant holds. The booked_seats condition repeats the
// caller's shrink check inside the statement; a concurrent booking that
// raised the count between read and write matches no row instead of driving
// available_seats negative.
func (r ScheduleRepository) Update(s models.Schedule) error {
	res, err := r.db().Exec(`UPDATE schedules
		SET route_from = ?, route_to = ?, departure_at = ?, price_per_seat = ?,
			total_seats = ?, available_seats = ? - booked_seats, updated_at = ?
		WHERE id = ? AND booked_seats <= ?`,
		s.RouteFrom, s.RouteTo, s.DepartureAt, s.PricePerSeat,
		s.TotalSeats, s.TotalSeats, time.Now().UTC(), s.ID, s.TotalSeats,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTotalBelowBooked
	}
	return nil
}

// TransitionStatus moves status along an already validated edge. The
// compare-and-set on the previous status catches concurrent transitions.
func (r ScheduleRepository) TransitionStatus(id int64, from, to string) error {
	res, err := r.db().Exec(`UPDATE schedules SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ListUpcoming returns schedules departing after now, soonest first.
func (r ScheduleRepository) ListUpcoming(limit int) ([]models.Schedule, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db().Query(`SELECT `+scheduleColumns+` FROM schedules
		WHERE departure_at > ? ORDER BY departure_at ASC LIMIT ?`, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrSeatsUnavailable is returned when the conditional seat decrement
	// matched no row: either capacity ran out under a concurrent writer or
	// the schedule left the scheduled state. The caller re-reads to decide.
	ErrSeatsUnavailable = errors.New("seats unavailable")

	// ErrLedgerUnderflow is returned when a seat release would drive
	// booked_seats negative. This is never clamped; the caller must treat
	// it as ledger corruption.
	ErrLedgerUnderflow = errors.New("seat release exceeds booked count")

	// ErrStatusChanged signals a status transition lost a race with a
	// concurrent writer.
	ErrStatusChanged = errors.New("status changed concurrently")

	// ErrTotalBelowBooked is returned when a schedule rewrite would set
	// total_seats below the booked count. The guard lives in the UPDATE
	// itself so a booking landing between read and write cannot slip the
	// ledger negative.
	ErrTotalBelowBooked = errors.New("total seats below booked count")

	// ErrInvalidTransition signals a lifecycle update from a state that
	// does not permit it.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// IsDuplicateEntry reports a MySQL unique-key violation (error 1062).
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

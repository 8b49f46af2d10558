package repositories

import (
	"database/sql"

	intconfig "intercity/internal/config"
	"intercity/internal/domain/models"
)

type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r OperatorRepository) GetByID(id int64) (models.Operator, error) {
	var o models.Operator
	err := r.db().QueryRow(`SELECT id, name, total_bookings, created_at FROM operators WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &o.TotalBookings, &o.CreatedAt)
	return o, err
}

// IncrementTotalBookings bumps the denormalized stats counter. Runs after
// the booking transaction commits; callers log failures and move on.
func (r OperatorRepository) IncrementTotalBookings(id int64) error {
	_, err := r.db().Exec(`UPDATE operators SET total_bookings = total_bookings + 1 WHERE id = ?`, id)
	return err
}

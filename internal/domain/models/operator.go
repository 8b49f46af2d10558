package models

import "time"

// Operator is the company running schedules. TotalBookings is a best-effort
// denormalized counter updated outside the booking transaction; rare drift
// is acceptable.
type Operator struct {
	ID            int64
	Name          string
	TotalBookings int64
	CreatedAt     time.Time
}

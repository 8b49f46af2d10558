package models

import "time"

const (
	// MaxSeatsPerBooking caps a single reservation.
	MaxSeatsPerBooking = 10

	// RefundWindow is the policy window after creation during which an
	// active booking is flagged refund-eligible. Advisory only; the payment
	// collaborator makes the actual refund decision.
	RefundWindow = 24 * time.Hour
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCheckedIn = "checked_in"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no_show"
	BookingStatusRefunded  = "refunded"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Booking is one passenger's reservation of seats on a schedule. Route and
// operator ids are captured at booking time and stay frozen even if the
// schedule row later changes. Monetary fields are integer minor units.
type Booking struct {
	ID                 int64
	Reference          string
	UserID             int64
	ScheduleID         int64
	OperatorID         int64
	RouteFrom          string
	RouteTo            string
	PassengerName      string
	PassengerEmail     string
	PassengerPhone     string
	SeatCount          int
	SeatNumbers        string
	SpecialRequests    string
	PricePerSeat       int64
	TotalAmount        int64
	PaymentStatus      string
	Status             string
	CheckedInAt        *time.Time
	CancellationDate   *time.Time
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Cancellable reports whether the booking may still be cancelled.
func (b Booking) Cancellable() bool {
	switch b.Status {
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow, BookingStatusRefunded:
		return false
	}
	return true
}

// Refundable flags refund eligibility: active booking within the refund
// window. A false result does not block cancellation.
func (b Booking) Refundable(now time.Time) bool {
	if b.Status != BookingStatusConfirmed && b.Status != BookingStatusCheckedIn {
		return false
	}
	return now.Sub(b.CreatedAt) <= RefundWindow
}

// CanCheckIn reports whether a check-in transition is valid.
func (b Booking) CanCheckIn() bool {
	return b.Status == BookingStatusConfirmed
}

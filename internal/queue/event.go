// Package queue defines message payloads exchanged with the notification
// consumer and the publisher that delivers them.
package queue

const (
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

// NotificationData carries the booking identifiers consumers dedupe on
// (booking id + event type; delivery is at-least-once).
type NotificationData struct {
	BookingID        int64  `json:"bookingId"`
	BookingReference string `json:"bookingReference"`
	Reason           string `json:"reason,omitempty"`
}

// Notification is the outbound event contract. It is emitted after the
// booking transaction commits and never affects the result already returned
// to the caller.
type Notification struct {
	UserID int64            `json:"userId"`
	Type   string           `json:"type"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   NotificationData `json:"data"`
}

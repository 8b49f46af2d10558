package models

import "time"

const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusBoarding  = "boarding"
	ScheduleStatusDeparted  = "departed"
	ScheduleStatusArrived   = "arrived"
	ScheduleStatusCancelled = "cancelled"
	ScheduleStatusDelayed   = "delayed"
)

// Schedule is the seat ledger for one scheduled trip instance. It owns the
// sole source of truth for remaining capacity; seat counts are mutated only
// by the booking coordinator.
//
// Invariant: AvailableSeats == TotalSeats - BookedSeats, and
// 0 <= BookedSeats <= TotalSeats.
type Schedule struct {
	ID             int64
	OperatorID     int64
	RouteFrom      string
	RouteTo        string
	DepartureAt    time.Time
	PricePerSeat   int64 // minor currency units
	TotalSeats     int
	BookedSeats    int
	AvailableSeats int
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var scheduleTransitions = map[string][]string{
	ScheduleStatusScheduled: {ScheduleStatusBoarding, ScheduleStatusCancelled, ScheduleStatusDelayed},
	ScheduleStatusDelayed:   {ScheduleStatusBoarding, ScheduleStatusCancelled},
	ScheduleStatusBoarding:  {ScheduleStatusDeparted},
	ScheduleStatusDeparted:  {ScheduleStatusArrived},
}

// CanTransition reports whether the status may move along a defined edge.
// arrived and cancelled are terminal.
func (s Schedule) CanTransition(next string) bool {
	for _, allowed := range scheduleTransitions[s.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Immutable reports whether the schedule rejects field updates. Status may
// still move departed -> arrived; everything else is frozen.
func (s Schedule) Immutable() bool {
	return s.Status == ScheduleStatusDeparted || s.Status == ScheduleStatusArrived
}

// Bookable reports whether new reservations are accepted.
func (s Schedule) Bookable(now time.Time) bool {
	return s.Status == ScheduleStatusScheduled && s.DepartureAt.After(now)
}

func IsScheduleStatus(s string) bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusBoarding, ScheduleStatusDeparted,
		ScheduleStatusArrived, ScheduleStatusCancelled, ScheduleStatusDelayed:
		return true
	}
	return false
}

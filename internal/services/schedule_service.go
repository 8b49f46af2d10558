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
	"intercity/internal/repositories"
	"intercity/internal/utils"
)

// ScheduleService owns the ledger lifecycle outside seat-count mutation:
// creation, field updates, status transitions and the operator bulk cancel.
type ScheduleService struct {
	DB           *sql.DB
	ScheduleRepo repositories.ScheduleRepository
	BookingRepo  repositories.BookingRepository
	OperatorRepo repositories.OperatorRepository
	Notifier     Notifier
	RequestID    string
	Now          func() time.Time
}

func (s ScheduleService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ScheduleService) schedules() repositories.ScheduleRepository {
	if s.ScheduleRepo.DB != nil {
		return s.ScheduleRepo
	}
	return repositories.ScheduleRepository{DB: s.db()}
}

func (s ScheduleService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s ScheduleService) bookingSvc() BookingService {
	return BookingService{
		DB:           s.db(),
		ScheduleRepo: s.schedules(),
		BookingRepo:  s.bookings(),
		OperatorRepo: s.OperatorRepo,
		Notifier:     s.Notifier,
		RequestID:    s.RequestID,
		Now:          s.Now,
	}
}

func (s ScheduleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type CreateScheduleInput struct {
	OperatorID   int64
	RouteFrom    string
	RouteTo      string
	DepartureAt  time.Time
	PricePerSeat int64
	TotalSeats   int
}

// Create opens a new departure. Capacity starts full: available == total,
// booked == 0.
func (s ScheduleService) Create(in CreateScheduleInput) (models.Schedule, error) {
	var zero models.Schedule
	in.RouteFrom = utils.NormalizeName(in.RouteFrom)
	in.RouteTo = utils.NormalizeName(in.RouteTo)

	if in.OperatorID <= 0 {
		return zero, domain.ValidationError{Field: "operatorId", Msg: "required"}
	}
	if in.RouteFrom == "" || in.RouteTo == "" {
		return zero, domain.ValidationError{Field: "route", Msg: "routeFrom and routeTo are required"}
	}
	if in.TotalSeats <= 0 {
		return zero, domain.ValidationError{Field: "totalSeats", Msg: "must be positive"}
	}
	if in.PricePerSeat < 0 {
		return zero, domain.ValidationError{Field: "pricePerSeat", Msg: "must not be negative"}
	}
	if !in.DepartureAt.After(s.now()) {
		return zero, domain.ValidationError{Field: "departureAt", Msg: "must be in the future"}
	}

	sched := models.Schedule{
		OperatorID:     in.OperatorID,
		RouteFrom:      in.RouteFrom,
		RouteTo:        in.RouteTo,
		DepartureAt:    in.DepartureAt.UTC(),
		PricePerSeat:   in.PricePerSeat,
		TotalSeats:     in.TotalSeats,
		BookedSeats:    0,
		AvailableSeats: in.TotalSeats,
		Status:         models.ScheduleStatusScheduled,
	}
	if err := s.schedules().Create(&sched); err != nil {
		return zero, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "schedule", "created",
		fmt.Sprintf("schedule_id=%d seats=%d departure=%s", sched.ID, sched.TotalSeats, utils.FormatDateTime(sched.DepartureAt)))
	return sched, nil
}

func (s ScheduleService) Get(id int64) (models.Schedule, error) {
	sched, err := s.schedules().GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return sched, domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return sched, domain.InternalError{Err: err}
	}
	return sched, nil
}

func (s ScheduleService) ListUpcoming(limit int) ([]models.Schedule, error) {
	out, err := s.schedules().ListUpcoming(limit)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// UpdateScheduleInput applies PATCH-style updates via pointer presence.
type UpdateScheduleInput struct {
	RouteFrom    *string
	RouteTo      *string
	DepartureAt  *time.Time
	PricePerSeat *int64
	TotalSeats   *int
}

// Update rewrites mutable schedule fields. Rejected once the trip departed
// or arrived; total seats may never drop below seats already booked.
func (s ScheduleService) Update(id int64, in UpdateScheduleInput) (models.Schedule, error) {
	sched, err := s.Get(id)
	if err != nil {
		return sched, err
	}
	if sched.Immutable() {
		return sched, domain.ConflictError{Resource: "schedule", Msg: "immutable after departure"}
	}

	if in.RouteFrom != nil {
		if v := utils.NormalizeName(*in.RouteFrom); v != "" {
			sched.RouteFrom = v
		}
	}
	if in.RouteTo != nil {
		if v := utils.NormalizeName(*in.RouteTo); v != "" {
			sched.RouteTo = v
		}
	}
	if in.DepartureAt != nil {
		if !in.DepartureAt.After(s.now()) {
			return sched, domain.ValidationError{Field: "departureAt", Msg: "must be in the future"}
		}
		sched.DepartureAt = in.DepartureAt.UTC()
	}
	if in.PricePerSeat != nil {
		if *in.PricePerSeat < 0 {
			return sched, domain.ValidationError{Field: "pricePerSeat", Msg: "must not be negative"}
		}
		sched.PricePerSeat = *in.PricePerSeat
	}
	if in.TotalSeats != nil {
		if *in.TotalSeats < sched.BookedSeats {
			return sched, domain.ValidationError{
				Field: "totalSeats",
				Msg:   fmt.Sprintf("cannot drop below %d already booked seat(s)", sched.BookedSeats),
			}
		}
		sched.TotalSeats = *in.TotalSeats
		sched.AvailableSeats = sched.TotalSeats - sched.BookedSeats
	}

	if err := s.schedules().Update(sched); err != nil {
		if errors.Is(err, repositories.ErrTotalBelowBooked) {
			return sched, domain.ConflictError{Resource: "schedule", Msg: "booked seats changed concurrently"}
		}
		return sched, domain.InternalError{Err: err}
	}
	return s.Get(id)
}

// TransitionStatus moves the schedule along a defined lifecycle edge.
func (s ScheduleService) TransitionStatus(id int64, next string) (models.Schedule, error) {
	next = strings.ToLower(strings.TrimSpace(next))
	if !models.IsScheduleStatus(next) {
		return models.Schedule{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}

	sched, err := s.Get(id)
	if err != nil {
		return sched, err
	}
	if !sched.CanTransition(next) {
		return sched, domain.ConflictError{
			Resource: "schedule",
			Msg:      fmt.Sprintf("cannot move from %s to %s", sched.Status, next),
		}
	}
	if next == models.ScheduleStatusCancelled {
		// Cancelling a schedule with seat-holding reservations must go
		// through the bulk cancel so the ledger stays reconciled.
		if sched.BookedSeats > 0 {
			return sched, domain.ConflictError{Resource: "schedule", Msg: "has active reservations; use the cancel operation"}
		}
	}

	if err := s.schedules().TransitionStatus(id, sched.Status, next); err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return sched, domain.ConflictError{Resource: "schedule", Msg: "status changed concurrently"}
		}
		return sched, domain.InternalError{Err: err}
	}
	return s.Get(id)
}

// CancelScheduleResult reports the bulk cancellation outcome. Failures are
// collected per reservation, never fatal to the batch.
type CancelScheduleResult struct {
	ScheduleID int64    `json:"scheduleId"`
	Cancelled  int      `json:"cancelled"`
	Failures   []string `json:"failures,omitempty"`
}

// CancelSchedule is the operator-initiated bulk variant: the schedule is
// closed to new bookings first, then every seat-holding reservation is
// cancelled in its own transaction so one failure cannot block the rest.
func (s ScheduleService) CancelSchedule(ctx context.Context, id int64) (CancelScheduleResult, error) {
	result := CancelScheduleResult{ScheduleID: id}

	sched, err := s.Get(id)
	if err != nil {
		return result, err
	}
	if sched.Status == models.ScheduleStatusCancelled {
		return result, domain.ValidationError{Field: "status", Msg: "schedule already cancelled"}
	}
	if !sched.CanTransition(models.ScheduleStatusCancelled) {
		return result, domain.ConflictError{
			Resource: "schedule",
			Msg:      fmt.Sprintf("cannot move from %s to %s", sched.Status, models.ScheduleStatusCancelled),
		}
	}

	// Stop new reservations before sweeping the existing ones.
	if err := s.schedules().TransitionStatus(id, sched.Status, models.ScheduleStatusCancelled); err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return result, domain.ConflictError{Resource: "schedule", Msg: "status changed concurrently"}
		}
		return result, domain.InternalError{Err: err}
	}

	active, err := s.bookings().ListActiveBySchedule(id)
	if err != nil {
		return result, domain.InternalError{Err: err}
	}

	svc := s.bookingSvc()
	for _, b := range active {
		if _, err := svc.Cancel(ctx, b.ID, 0, "schedule cancelled by operator"); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("booking %d: %v", b.ID, err))
			continue
		}
		result.Cancelled++
	}

	utils.LogEvent(s.RequestID, "schedule", "cancelled",
		fmt.Sprintf("schedule_id=%d cancelled=%d failed=%d", id, result.Cancelled, len(result.Failures)))
	return result, nil
}

// ReconcileReport compares the ledger against the reservations that should
// back it.
type ReconcileReport struct {
	ScheduleID     int64 `json:"scheduleId"`
	BookedSeats    int   `json:"bookedSeats"`
	ReservedSeats  int   `json:"reservedSeats"`
	TotalSeats     int   `json:"totalSeats"`
	AvailableSeats int   `json:"availableSeats"`
	Consistent     bool  `json:"consistent"`
}

// Reconcile verifies both ledger invariants: counters add up, and the sum of
// seats across seat-holding reservations equals booked_seats. A mismatch is
// reported, never auto-corrected.
func (s ScheduleService) Reconcile(id int64) (ReconcileReport, error) {
	sched, err := s.Get(id)
	if err != nil {
		return ReconcileReport{}, err
	}
	reserved, err := s.bookings().SumActiveSeatsBySchedule(id)
	if err != nil {
		return ReconcileReport{}, domain.InternalError{Err: err}
	}

	report := ReconcileReport{
		ScheduleID:     sched.ID,
		BookedSeats:    sched.BookedSeats,
		ReservedSeats:  reserved,
		TotalSeats:     sched.TotalSeats,
		AvailableSeats: sched.AvailableSeats,
	}
	report.Consistent = sched.BookedSeats+sched.AvailableSeats == sched.TotalSeats &&
		sched.BookedSeats >= 0 && sched.BookedSeats <= sched.TotalSeats &&
		reserved == sched.BookedSeats

	if !report.Consistent {
		utils.LogAlert(s.RequestID, "schedule", "reconcile_mismatch",
			fmt.Sprintf("schedule_id=%d booked=%d reserved=%d total=%d available=%d",
				sched.ID, sched.BookedSeats, reserved, sched.TotalSeats, sched.AvailableSeats))
	}
	return report, nil
}

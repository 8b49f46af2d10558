package models

import (
	"testing"
	"time"
)

func TestScheduleCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ScheduleStatusScheduled, ScheduleStatusBoarding, true},
		{ScheduleStatusScheduled, ScheduleStatusCancelled, true},
		{ScheduleStatusScheduled, ScheduleStatusDelayed, true},
		{ScheduleStatusScheduled, ScheduleStatusArrived, false},
		{ScheduleStatusDelayed, ScheduleStatusBoarding, true},
		{ScheduleStatusDelayed, ScheduleStatusCancelled, true},
		{ScheduleStatusDelayed, ScheduleStatusDeparted, false},
		{ScheduleStatusBoarding, ScheduleStatusDeparted, true},
		{ScheduleStatusBoarding, ScheduleStatusCancelled, false},
		{ScheduleStatusDeparted, ScheduleStatusArrived, true},
		{ScheduleStatusDeparted, ScheduleStatusScheduled, false},
		{ScheduleStatusArrived, ScheduleStatusScheduled, false},
		{ScheduleStatusCancelled, ScheduleStatusScheduled, false},
		{ScheduleStatusCancelled, ScheduleStatusBoarding, false},
	}

	for _, tc := range cases {
		s := Schedule{Status: tc.from}
		if got := s.CanTransition(tc.to); got != tc.want {
			t.Fatalf("transition %s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestScheduleImmutable(t *testing.T) {
	for _, status := range []string{ScheduleStatusDeparted, ScheduleStatusArrived} {
		if !(Schedule{Status: status}).Immutable() {
			t.Fatalf("%s should be immutable", status)
		}
	}
	for _, status := range []string{ScheduleStatusScheduled, ScheduleStatusBoarding, ScheduleStatusDelayed, ScheduleStatusCancelled} {
		if (Schedule{Status: status}).Immutable() {
			t.Fatalf("%s should not be immutable", status)
		}
	}
}

func TestScheduleBookable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s := Schedule{Status: ScheduleStatusScheduled, DepartureAt: now.Add(2 * time.Hour)}
	if !s.Bookable(now) {
		t.Fatalf("future scheduled trip should be bookable")
	}

	s.DepartureAt = now.Add(-time.Minute)
	if s.Bookable(now) {
		t.Fatalf("past departure should not be bookable")
	}

	s.DepartureAt = now.Add(2 * time.Hour)
	s.Status = ScheduleStatusBoarding
	if s.Bookable(now) {
		t.Fatalf("boarding trip should not be bookable")
	}

	s.Status = ScheduleStatusCancelled
	if s.Bookable(now) {
		t.Fatalf("cancelled trip should not be bookable")
	}
}

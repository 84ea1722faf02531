package collection

import (
	"fmt"
	"time"
)

// DefaultMaxDaysAhead is how far ahead a collection may be booked.
const DefaultMaxDaysAhead = 7

// ScheduleResult is either BookingTime or SchedulingFailure.
type ScheduleResult interface {
	scheduleResult()
}

// BookingTime is when the collection must be booked with the carrier.
type BookingTime struct {
	BookAt time.Time
}

// SchedulingFailure explains why a collection date was rejected. It is an
// expected outcome, not an error.
type SchedulingFailure struct {
	Failure string
}

func (BookingTime) scheduleResult()       {}
func (SchedulingFailure) scheduleResult() {}

// Scheduling decides when a collection on date is booked.
type Scheduling interface {
	Schedule(date time.Time, loc *time.Location, now time.Time) ScheduleResult
}

// Scheduler is the default Scheduling.
type Scheduler struct {
	MaxDaysAhead int
}

// NewScheduler returns a scheduler accepting dates up to maxDaysAhead days
// ahead; zero or less means DefaultMaxDaysAhead.
func NewScheduler(maxDaysAhead int) Scheduler {
	if maxDaysAhead <= 0 {
		maxDaysAhead = DefaultMaxDaysAhead
	}
	return Scheduler{MaxDaysAhead: maxDaysAhead}
}

// Schedule books a collection on date, a calendar day in loc. A same-day
// collection is booked now; a later one at 22:30 local time the day before.
func (s Scheduler) Schedule(date time.Time, loc *time.Location, now time.Time) ScheduleResult {
	if loc == nil {
		loc = time.UTC
	}
	maxDays := s.MaxDaysAhead
	if maxDays <= 0 {
		maxDays = DefaultMaxDaysAhead
	}

	today := day(now.In(loc), loc)
	collection := day(date, loc)

	switch {
	case collection.Before(today):
		return SchedulingFailure{Failure: "Collection date cannot be in the past"}
	case collection.After(today.AddDate(0, 0, maxDays)):
		return SchedulingFailure{Failure: fmt.Sprintf("Collection date cannot be after %d days in the future", maxDays)}
	case collection.Equal(today):
		return BookingTime{BookAt: now}
	}

	y, m, d := collection.AddDate(0, 0, -1).Date()
	return BookingTime{BookAt: time.Date(y, m, d, 22, 30, 0, 0, loc)}
}

// day returns midnight in loc of the calendar day of t as written.
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

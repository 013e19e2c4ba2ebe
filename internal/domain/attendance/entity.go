package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attendance is one check-in event. Owned by the attendance module.
type Attendance struct {
	ID            string
	EmployeeID    string
	CheckIn       time.Time
	CheckOut      *time.Time
	Status        Status
	OvertimeHours *decimal.Decimal
	CreatedAt     time.Time
}

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusOnLeave Status = "on_leave"
)

// CountsAsPresent is true for statuses where the employee showed up.
func (s Status) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusLate
}

func (s Status) CountsAsLeave() bool {
	return s == StatusLeave || s == StatusOnLeave
}

// DayRange returns the half-open instant range covering the calendar days
// from through to. Both bounds use from's zone, so callers passing period
// dates get the same window everywhere.
func DayRange(from, to time.Time) (time.Time, time.Time) {
	loc := from.Location()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return start, end
}

// InRange reports whether t falls in the DayRange of from and to.
func InRange(t, from, to time.Time) bool {
	start, end := DayRange(from, to)
	return !t.Before(start) && t.Before(end)
}

package policy

import (
	"time"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// Window is one row of the shift window table: a time range during which
// an action is valid for a shift type, optionally on one weekday only.
// Bounds are inclusive on both ends.
type Window struct {
	Shift       employee.Shift
	Action      Action
	Weekday     *time.Weekday // nil matches every weekday
	Start       clock.TimeOfDay
	End         clock.TimeOfDay
	Status      attendance.Status // resulting status, check-in windows only
	PreviousDay bool              // checkout attributed to the previous business date
}

// Guard further restricts an already-matched checkout window on a given
// weekday for given roles. Guards can only narrow a window, never widen it.
type Guard struct {
	Weekday   time.Weekday
	Action    Action
	Roles     []employee.Role // empty matches every role
	NotBefore clock.TimeOfDay
}

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }

// DefaultWindows is the canonical rule set, in priority order: the first
// matching window wins, so weekday-specific rows precede the generic ones.
func DefaultWindows() []Window {
	return []Window{
		// Day shift check-in
		{Shift: employee.ShiftDay, Action: ActionCheckIn, Start: clock.MustTimeOfDay("07:30:00"), End: clock.MustTimeOfDay("08:00:00"), Status: attendance.StatusPresent},
		{Shift: employee.ShiftDay, Action: ActionCheckIn, Start: clock.MustTimeOfDay("08:01:00"), End: clock.MustTimeOfDay("09:00:00"), Status: attendance.StatusLate},

		// Night shift check-in
		{Shift: employee.ShiftNight, Action: ActionCheckIn, Start: clock.MustTimeOfDay("19:30:00"), End: clock.MustTimeOfDay("20:00:00"), Status: attendance.StatusPresent},
		{Shift: employee.ShiftNight, Action: ActionCheckIn, Start: clock.MustTimeOfDay("20:01:00"), End: clock.MustTimeOfDay("21:00:00"), Status: attendance.StatusLate},

		// Saturday early close replaces the normal day checkout window
		{Shift: employee.ShiftDay, Action: ActionCheckOut, Weekday: weekdayPtr(time.Saturday), Start: clock.MustTimeOfDay("15:00:00"), End: clock.MustTimeOfDay("18:59:59")},

		// Day shift check-out, same business date
		{Shift: employee.ShiftDay, Action: ActionCheckOut, Start: clock.MustTimeOfDay("18:00:00"), End: clock.MustTimeOfDay("18:59:59")},

		// Night shift check-out belongs to the previous business date
		{Shift: employee.ShiftNight, Action: ActionCheckOut, Start: clock.MustTimeOfDay("06:00:00"), End: clock.MustTimeOfDay("07:55:00"), PreviousDay: true},
	}
}

// DefaultGuards are the weekday-specific late-checkout blocks for staff.
// Whether field employees follow the staff guards is deployment
// configuration; the default says they do.
func DefaultGuards(fieldFollowsStaff bool) []Guard {
	roles := []employee.Role{employee.RoleStaff}
	if fieldFollowsStaff {
		roles = append(roles, employee.RoleField)
	}
	return []Guard{
		{Weekday: time.Tuesday, Action: ActionCheckOut, Roles: roles, NotBefore: clock.MustTimeOfDay("09:00:00")},
		{Weekday: time.Wednesday, Action: ActionCheckOut, Roles: roles, NotBefore: clock.MustTimeOfDay("13:00:00")},
	}
}

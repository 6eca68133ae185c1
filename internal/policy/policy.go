// Package policy holds the shift window rule table: the mapping from
// current local time to allowed action and resulting status, per shift
// type and weekday. It is pure data plus a single matching function, so
// the whole rule set is testable without a database or a real clock.
package policy

import (
	"fmt"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

// Decision is the outcome of classifying an action against the table.
type Decision struct {
	Allowed     bool
	Shift       employee.Shift    // shift whose window matched
	Status      attendance.Status // resulting status, check-in only
	PreviousDay bool              // checkout belongs to yesterday's record
	Reason      string            // set when not allowed
}

type Policy struct {
	windows []Window
	guards  []Guard
}

func New(windows []Window, guards []Guard) *Policy {
	return &Policy{windows: windows, guards: guards}
}

// Default returns the canonical policy with field employees following the
// staff guard set.
func Default() *Policy {
	return New(DefaultWindows(), DefaultGuards(true))
}

// Classify scans the window table in priority order and returns the first
// match. A shift hint of ShiftUnspecified matches windows of any shift;
// the decision then carries the shift the matching window belongs to.
// Check-in and check-out windows never overlap, so at most one window can
// match a given (action, time) pair per shift.
func (p *Policy) Classify(action Action, shift employee.Shift, now clock.TimeOfDay, weekday time.Weekday, role employee.Role) Decision {
	for _, w := range p.windows {
		if w.Action != action {
			continue
		}
		if w.Weekday != nil && *w.Weekday != weekday {
			continue
		}
		if shift != employee.ShiftUnspecified && w.Shift != shift {
			continue
		}
		if !now.Between(w.Start, w.End) {
			continue
		}

		if guard, blocked := p.blockedBy(action, now, weekday, role); blocked {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("%s not allowed before %s on %s", action, guard.NotBefore, weekday),
			}
		}

		return Decision{
			Allowed:     true,
			Shift:       w.Shift,
			Status:      w.Status,
			PreviousDay: w.PreviousDay,
		}
	}

	return Decision{Allowed: false, Reason: "outside allowed window"}
}

func (p *Policy) blockedBy(action Action, now clock.TimeOfDay, weekday time.Weekday, role employee.Role) (Guard, bool) {
	for _, g := range p.guards {
		if g.Action != action || g.Weekday != weekday {
			continue
		}
		if len(g.Roles) > 0 && !roleIn(role, g.Roles) {
			continue
		}
		if now.Before(g.NotBefore) {
			return g, true
		}
	}
	return Guard{}, false
}

func roleIn(role employee.Role, roles []employee.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

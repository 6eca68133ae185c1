package policy

import (
	"testing"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

func tod(s string) clock.TimeOfDay { return clock.MustTimeOfDay(s) }

func TestClassifyCheckIn(t *testing.T) {
	p := Default()

	tests := []struct {
		name       string
		shift      employee.Shift
		now        string
		weekday    time.Weekday
		allowed    bool
		status     attendance.Status
		wantShift  employee.Shift
	}{
		{"day on-time window start", employee.ShiftDay, "07:30:00", time.Monday, true, attendance.StatusPresent, employee.ShiftDay},
		{"day on-time window end", employee.ShiftDay, "08:00:00", time.Monday, true, attendance.StatusPresent, employee.ShiftDay},
		{"day late window start", employee.ShiftDay, "08:01:00", time.Monday, true, attendance.StatusLate, employee.ShiftDay},
		{"day late window end", employee.ShiftDay, "09:00:00", time.Monday, true, attendance.StatusLate, employee.ShiftDay},
		{"day too early", employee.ShiftDay, "07:29:59", time.Monday, false, "", ""},
		{"day gap between windows", employee.ShiftDay, "08:00:30", time.Monday, false, "", ""},
		{"day too late", employee.ShiftDay, "09:00:01", time.Monday, false, "", ""},

		{"night on-time", employee.ShiftNight, "19:45:00", time.Monday, true, attendance.StatusPresent, employee.ShiftNight},
		{"night late", employee.ShiftNight, "20:10:00", time.Monday, true, attendance.StatusLate, employee.ShiftNight},
		{"night too late", employee.ShiftNight, "21:00:01", time.Monday, false, "", ""},

		// No shift hint: the matching window decides the shift.
		{"unspecified resolves day", employee.ShiftUnspecified, "07:45:00", time.Monday, true, attendance.StatusPresent, employee.ShiftDay},
		{"unspecified resolves night", employee.ShiftUnspecified, "20:30:00", time.Monday, true, attendance.StatusLate, employee.ShiftNight},

		// Shift hint excludes the other shift's windows.
		{"day hint blocks night window", employee.ShiftDay, "19:45:00", time.Monday, false, "", ""},
		{"night hint blocks day window", employee.ShiftNight, "07:45:00", time.Monday, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Classify(ActionCheckIn, tt.shift, tod(tt.now), tt.weekday, employee.RoleStaff)
			if d.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
			if !tt.allowed {
				if d.Reason == "" {
					t.Error("rejected decision carries no reason")
				}
				return
			}
			if d.Status != tt.status {
				t.Errorf("Status = %s, want %s", d.Status, tt.status)
			}
			if d.Shift != tt.wantShift {
				t.Errorf("Shift = %s, want %s", d.Shift, tt.wantShift)
			}
			if d.PreviousDay {
				t.Error("check-in must never attribute to the previous day")
			}
		})
	}
}

func TestClassifyCheckOut(t *testing.T) {
	p := Default()

	tests := []struct {
		name        string
		shift       employee.Shift
		now         string
		weekday     time.Weekday
		allowed     bool
		previousDay bool
	}{
		{"day checkout window start", employee.ShiftDay, "18:00:00", time.Monday, true, false},
		{"day checkout window end", employee.ShiftDay, "18:59:59", time.Monday, true, false},
		{"day checkout too early", employee.ShiftDay, "17:59:59", time.Monday, false, false},
		{"day checkout too late", employee.ShiftDay, "19:00:00", time.Monday, false, false},

		// Night checkout the following morning belongs to yesterday's record.
		{"night checkout start", employee.ShiftNight, "06:00:00", time.Monday, true, true},
		{"night checkout end", employee.ShiftNight, "07:55:00", time.Monday, true, true},
		{"night checkout too late", employee.ShiftNight, "07:55:01", time.Monday, false, false},

		// Saturday opens the day checkout window at 15:00.
		{"saturday early checkout", employee.ShiftDay, "15:00:00", time.Saturday, true, false},
		{"saturday mid afternoon", employee.ShiftDay, "16:30:00", time.Saturday, true, false},
		{"saturday before early window", employee.ShiftDay, "14:59:59", time.Saturday, false, false},
		{"friday has no early window", employee.ShiftDay, "15:00:00", time.Friday, false, false},
		{"saturday normal hours still allowed", employee.ShiftDay, "18:30:00", time.Saturday, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Classify(ActionCheckOut, tt.shift, tod(tt.now), tt.weekday, employee.RoleAdmin)
			if d.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
			if d.Allowed && d.PreviousDay != tt.previousDay {
				t.Errorf("PreviousDay = %v, want %v", d.PreviousDay, tt.previousDay)
			}
		})
	}
}

func TestClassifyCheckOutGuards(t *testing.T) {
	p := Default()

	// Tuesday blocks staff checkout before 09:00, so the night window
	// (which closes at 07:55) is fully blocked for staff that day.
	d := p.Classify(ActionCheckOut, employee.ShiftNight, tod("06:30:00"), time.Tuesday, employee.RoleStaff)
	if d.Allowed {
		t.Error("staff night checkout should be guarded on Tuesday morning")
	}
	if d.Reason == "" {
		t.Error("guarded decision carries no reason")
	}

	// Admin is not in the guard role set.
	d = p.Classify(ActionCheckOut, employee.ShiftNight, tod("06:30:00"), time.Tuesday, employee.RoleAdmin)
	if !d.Allowed {
		t.Errorf("admin night checkout should pass the Tuesday guard, got reason %q", d.Reason)
	}

	// Field follows staff by default.
	d = p.Classify(ActionCheckOut, employee.ShiftNight, tod("06:30:00"), time.Tuesday, employee.RoleField)
	if d.Allowed {
		t.Error("field night checkout should be guarded on Tuesday morning by default")
	}

	// With fieldFollowsStaff disabled, field passes.
	loose := New(DefaultWindows(), DefaultGuards(false))
	d = loose.Classify(ActionCheckOut, employee.ShiftNight, tod("06:30:00"), time.Tuesday, employee.RoleField)
	if !d.Allowed {
		t.Errorf("field night checkout should pass when not following staff guards, got reason %q", d.Reason)
	}

	// Wednesday guard ends at 13:00; the evening day checkout is past it.
	d = p.Classify(ActionCheckOut, employee.ShiftDay, tod("18:30:00"), time.Wednesday, employee.RoleStaff)
	if !d.Allowed {
		t.Errorf("staff evening checkout on Wednesday should be allowed, got reason %q", d.Reason)
	}

	// Guards never widen: a guarded weekday still rejects times with no window.
	d = p.Classify(ActionCheckOut, employee.ShiftDay, tod("10:00:00"), time.Tuesday, employee.RoleStaff)
	if d.Allowed {
		t.Error("guard must not open a checkout window outside the table")
	}
}

func TestWindowPriorityOrder(t *testing.T) {
	// The Saturday row precedes the generic day checkout row; at 18:30 on
	// Saturday both ranges contain the time and the weekday row must win.
	p := Default()
	d := p.Classify(ActionCheckOut, employee.ShiftDay, tod("18:30:00"), time.Saturday, employee.RoleAdmin)
	if !d.Allowed {
		t.Fatalf("expected a match, got reason %q", d.Reason)
	}
	if d.Shift != employee.ShiftDay {
		t.Errorf("Shift = %s, want %s", d.Shift, employee.ShiftDay)
	}
}

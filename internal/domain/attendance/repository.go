package attendance

import (
	"context"

	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

// FinalizeOptions carries the per-shift synthetic checkout times and the
// roles exempt from reconciliation (admins in the canonical configuration).
type FinalizeOptions struct {
	DayShiftEnd   clock.TimeOfDay
	NightShiftEnd clock.TimeOfDay
	ExemptRoles   []employee.Role
}

// FinalizeResult reports how many rows each finalize transition touched.
type FinalizeResult struct {
	MarkedAbsent int64
	Backfilled   int64
	MarkedLate   int64
}

// AttendanceRepository is the persistent attendance ledger keyed by
// (employee_id, date). The conditional WHERE clauses of the mutating
// operations double as optimistic concurrency guards: of two racing
// mutations on the same row, one affects zero rows instead of producing
// inconsistent data.
type AttendanceRepository interface {
	// EnsureRecords inserts a pending row for every employee lacking one
	// on the given date. Idempotent: existing rows are left untouched.
	EnsureRecords(ctx context.Context, date clock.Date) (int64, error)

	// EnsureRecord is the single-employee variant used by the check-in
	// path when the day-open job has not created the row yet.
	EnsureRecord(ctx context.Context, employeeID int64, date clock.Date) error

	// RecordCheckIn sets check_in_time, shift, status and punctuality on
	// the row iff no check-in exists; returns ErrCheckInRecorded otherwise.
	RecordCheckIn(ctx context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay, shift employee.Shift, status Status, punctuality *int) error

	// RecordCheckOut sets check_out_time on the open row for the date.
	// Status is left untouched; only the scheduled jobs may demote it.
	// Returns ErrNoActiveCheckIn when no open check-in exists.
	RecordCheckOut(ctx context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay) error

	// AutoCheckOut force-closes dangling rows of the given shift on the
	// given date at the cutoff time, demoting present rows to late. A nil
	// roles slice applies to every role.
	AutoCheckOut(ctx context.Context, shift employee.Shift, date clock.Date, cutoff clock.TimeOfDay, roles []employee.Role) (int64, error)

	// FinalizeDay forces all unresolved rows on the date into a terminal
	// status: pending -> absent with synthetic 00:00:00 times, absent rows
	// get null times backfilled only, checked-in rows without checkout ->
	// late with a per-shift synthetic checkout time.
	FinalizeDay(ctx context.Context, date clock.Date, opts FinalizeOptions) (FinalizeResult, error)

	// GetByEmployee retrieves an employee's history, newest date first
	GetByEmployee(ctx context.Context, employeeID int64) ([]AttendanceRecord, error)

	// GetByDate retrieves all records for a date joined with employee
	// metadata, for admin dashboards
	GetByDate(ctx context.Context, date clock.Date) ([]AttendanceRecord, error)

	// GetByEmployeeAndDate retrieves one record, nil when absent
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date clock.Date) (*AttendanceRecord, error)

	// Summary aggregates record counts by status for a date
	Summary(ctx context.Context, date clock.Date) (map[Status]int64, error)
}

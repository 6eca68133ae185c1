package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/config"
	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

// AttendanceJobs are the reconciliation transitions of the ledger: day-open,
// the shift-boundary auto-checkouts, and the finalize pass. All of them are
// set-based so one bad row can never halt a batch, and all of them re-run
// safely: the conditional WHERE clauses make every transition idempotent.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
	cfg            config.AttendanceConfig
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	clk clock.Clock,
	cfg config.AttendanceConfig,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		clock:          clk,
		cfg:            cfg,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_day_open", j.cfg.DayOpenAt, nil, j.DayOpen)
	scheduler.AddJob("attendance_night_auto_checkout", j.cfg.NightAutoCloseAt, nil, j.NightAutoCheckout)
	scheduler.AddJob("attendance_day_auto_checkout", j.cfg.DayAutoCloseAt, nil, j.DayAutoCheckout)
	scheduler.AddJob("attendance_saturday_staff_checkout", j.cfg.SaturdayCheckoutAt, []time.Weekday{time.Saturday}, j.SaturdayStaffCheckout)
	scheduler.AddJob("attendance_finalize", j.cfg.FinalizeAt, nil, j.Finalize)
}

// DayOpen creates a pending row for every employee missing one today.
func (j *AttendanceJobs) DayOpen(ctx context.Context) error {
	today := j.clock.Today()

	for _, skip := range j.cfg.DayOpenSkipDays {
		if j.clock.Weekday() == skip {
			slog.Info("Cron: Day-open skipped on non-working day", "date", today, "weekday", skip)
			return nil
		}
	}

	inserted, err := j.attendanceRepo.EnsureRecords(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to open attendance day: %w", err)
	}

	slog.Info("Cron: Attendance day opened", "date", today, "inserted", inserted)
	return nil
}

// NightAutoCheckout closes yesterday's dangling night-shift rows at the
// night checkout boundary.
func (j *AttendanceJobs) NightAutoCheckout(ctx context.Context) error {
	yesterday := j.clock.BusinessDate(-1)

	closed, err := j.attendanceRepo.AutoCheckOut(ctx, employee.ShiftNight, yesterday, j.cfg.NightAutoCloseAt, nil)
	if err != nil {
		return fmt.Errorf("failed to auto-close night shifts: %w", err)
	}

	slog.Info("Cron: Night shifts auto-closed", "date", yesterday, "count", closed)
	return nil
}

// DayAutoCheckout closes today's dangling day-shift rows after the day
// checkout window has elapsed.
func (j *AttendanceJobs) DayAutoCheckout(ctx context.Context) error {
	today := j.clock.Today()

	closed, err := j.attendanceRepo.AutoCheckOut(ctx, employee.ShiftDay, today, j.cfg.DayAutoCloseAt, nil)
	if err != nil {
		return fmt.Errorf("failed to auto-close day shifts: %w", err)
	}

	slog.Info("Cron: Day shifts auto-closed", "date", today, "count", closed)
	return nil
}

// SaturdayStaffCheckout applies the Saturday early close for staff roles.
func (j *AttendanceJobs) SaturdayStaffCheckout(ctx context.Context) error {
	today := j.clock.Today()

	roles := []employee.Role{employee.RoleStaff}
	if j.cfg.FieldFollowsStaff {
		roles = append(roles, employee.RoleField)
	}

	closed, err := j.attendanceRepo.AutoCheckOut(ctx, employee.ShiftDay, today, j.cfg.SaturdayCheckoutAt, roles)
	if err != nil {
		return fmt.Errorf("failed to run saturday early checkout: %w", err)
	}

	slog.Info("Cron: Saturday early checkout done", "date", today, "count", closed)
	return nil
}

// Finalize forces the previous business date's unresolved rows into a
// terminal status. The trigger time is validated at config load to fall
// after the last checkout window, so finalize is always the last writer.
func (j *AttendanceJobs) Finalize(ctx context.Context) error {
	businessDate := j.clock.BusinessDate(-1)

	opts := attendance.FinalizeOptions{
		DayShiftEnd:   j.cfg.DayShiftEnd,
		NightShiftEnd: j.cfg.NightShiftEnd,
		ExemptRoles:   exemptRoles(j.cfg.ExemptRoles),
	}

	result, err := j.attendanceRepo.FinalizeDay(ctx, businessDate, opts)
	if err != nil {
		return fmt.Errorf("failed to finalize attendance: %w", err)
	}

	slog.Info("Cron: Attendance finalized",
		"date", businessDate,
		"marked_absent", result.MarkedAbsent,
		"backfilled", result.Backfilled,
		"marked_late", result.MarkedLate)
	return nil
}

func exemptRoles(names []string) []employee.Role {
	roles := make([]employee.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, employee.Role(name))
	}
	return roles
}

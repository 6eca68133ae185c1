package attendance

import (
	"context"
	"fmt"
	"math"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
	"github.com/gilitu/attendance-backend-go/internal/pkg/database"
	"github.com/gilitu/attendance-backend-go/internal/pkg/geofence"
	"github.com/gilitu/attendance-backend-go/internal/policy"
)

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.AttendanceRepository
	employee.EmployeeRepository
	clock  clock.Clock
	fence  geofence.Validator
	policy *policy.Policy
}

func NewAttendanceService(
	db *database.DB,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
	fence geofence.Validator,
	pol *policy.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		clock:                clk,
		fence:                fence,
		policy:               pol,
	}
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	if !s.fence.Within(req.Latitude, req.Longitude) {
		return attendance.CheckInResponse{}, attendance.ErrOutsideGeofence
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckInResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.clock.TimeOfDay()
	decision := s.policy.Classify(policy.ActionCheckIn, emp.Shift, now, s.clock.Weekday(), emp.Role)
	if !decision.Allowed {
		return attendance.CheckInResponse{}, fmt.Errorf("%w: %s", attendance.ErrOutsideWindow, decision.Reason)
	}

	date := s.clock.Today()
	punctuality := punctualityScore(decision.Shift, now)

	// The day-open job normally created the row already; the ensure is a
	// conflict-free no-op then.
	if err := s.AttendanceRepository.EnsureRecord(ctx, emp.ID, date); err != nil {
		return attendance.CheckInResponse{}, err
	}

	if err := s.AttendanceRepository.RecordCheckIn(ctx, emp.ID, date, now, decision.Shift, decision.Status, &punctuality); err != nil {
		return attendance.CheckInResponse{}, err
	}

	return attendance.CheckInResponse{
		EmployeeID:  emp.ID,
		Date:        date.String(),
		Time:        now.String(),
		Status:      string(decision.Status),
		Punctuality: &punctuality,
	}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	if !s.fence.Within(req.Latitude, req.Longitude) {
		return attendance.CheckOutResponse{}, attendance.ErrOutsideGeofence
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckOutResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.clock.TimeOfDay()
	decision := s.policy.Classify(policy.ActionCheckOut, emp.Shift, now, s.clock.Weekday(), emp.Role)
	if !decision.Allowed {
		return attendance.CheckOutResponse{}, fmt.Errorf("%w: %s", attendance.ErrOutsideWindow, decision.Reason)
	}

	// An early-morning night checkout closes yesterday's record.
	date := s.clock.Today()
	if decision.PreviousDay {
		date = s.clock.BusinessDate(-1)
	}

	if err := s.AttendanceRepository.RecordCheckOut(ctx, emp.ID, date, now); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	return attendance.CheckOutResponse{
		EmployeeID: emp.ID,
		Date:       date.String(),
		Time:       now.String(),
	}, nil
}

// GetHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, employeeID int64) ([]attendance.RecordResponse, error) {
	records, err := s.AttendanceRepository.GetByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance history: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}
	return responses, nil
}

// GetByDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetByDate(ctx context.Context, date string) ([]attendance.RecordResponse, error) {
	d, err := clock.ParseDate(date)
	if err != nil {
		return nil, err
	}

	records, err := s.AttendanceRepository.GetByDate(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}
	return responses, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, date string) (attendance.SummaryResponse, error) {
	d, err := clock.ParseDate(date)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	counts, err := s.AttendanceRepository.Summary(ctx, d)
	if err != nil {
		return attendance.SummaryResponse{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	resp := attendance.SummaryResponse{
		Date:   d.String(),
		Counts: make(map[string]int64, len(counts)),
	}
	for status, total := range counts {
		resp.Counts[string(status)] = total
		resp.Total += total
	}
	return resp, nil
}

// InitializeDay implements attendance.AttendanceService.
// Admin-triggered equivalent of the day-open job; idempotent.
func (s *AttendanceServiceImpl) InitializeDay(ctx context.Context) (attendance.InitializeResponse, error) {
	date := s.clock.Today()

	inserted, err := s.AttendanceRepository.EnsureRecords(ctx, date)
	if err != nil {
		return attendance.InitializeResponse{}, fmt.Errorf("failed to initialize attendance: %w", err)
	}

	return attendance.InitializeResponse{Date: date.String(), Inserted: inserted}, nil
}

// punctualityScore maps the check-in time onto a 0-100 scale, falling
// linearly across the hour before the shift's nominal start (day 07:00 to
// 08:00, night 19:00 to 20:00).
func punctualityScore(shift employee.Shift, t clock.TimeOfDay) int {
	start := clock.MustTimeOfDay("07:00:00")
	end := clock.MustTimeOfDay("08:00:00")
	if shift == employee.ShiftNight {
		start = clock.MustTimeOfDay("19:00:00")
		end = clock.MustTimeOfDay("20:00:00")
	}

	if t <= start {
		return 100
	}
	if t >= end {
		return 0
	}
	return int(math.Round(float64(end-t) / float64(end-start) * 100))
}

func mapRecordToResponse(rec attendance.AttendanceRecord) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		EmployeeRole: rec.EmployeeRole,
		Date:         rec.Date.String(),
		Shift:        string(rec.Shift),
		CheckInTime:  timeOfDayToString(rec.CheckInTime),
		CheckOutTime: timeOfDayToString(rec.CheckOutTime),
		Status:       string(rec.Status),
		Punctuality:  rec.Punctuality,
	}
}

// timeOfDayToString safely converts a *clock.TimeOfDay to a string.
func timeOfDayToString(t *clock.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
	"github.com/gilitu/attendance-backend-go/internal/pkg/geofence"
	"github.com/gilitu/attendance-backend-go/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSiteLat = -3.69019
	testSiteLng = 33.41387
)

var testLoc = time.FixedZone("EAT", 3*3600)

func coord(v float64) *float64 { return &v }

// fakeEmployeeRepo serves a fixed set of employees from memory.
type fakeEmployeeRepo struct {
	employees map[int64]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	result := make([]employee.Employee, 0, len(f.employees))
	for _, emp := range f.employees {
		result = append(result, emp)
	}
	return result, nil
}

type ledgerKey struct {
	employeeID int64
	date       clock.Date
}

// fakeAttendanceRepo reproduces the ledger's conditional-update semantics
// in memory.
type fakeAttendanceRepo struct {
	records map[ledgerKey]*attendance.AttendanceRecord
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[ledgerKey]*attendance.AttendanceRecord)}
}

func (f *fakeAttendanceRepo) EnsureRecords(_ context.Context, date clock.Date) (int64, error) {
	return 0, nil
}

func (f *fakeAttendanceRepo) EnsureRecord(_ context.Context, employeeID int64, date clock.Date) error {
	key := ledgerKey{employeeID, date}
	if _, ok := f.records[key]; !ok {
		f.records[key] = &attendance.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       date,
			Status:     attendance.StatusPending,
		}
	}
	return nil
}

func (f *fakeAttendanceRepo) RecordCheckIn(_ context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay, shift employee.Shift, status attendance.Status, punctuality *int) error {
	rec, ok := f.records[ledgerKey{employeeID, date}]
	if !ok || rec.CheckInTime != nil {
		return attendance.ErrCheckInRecorded
	}
	rec.CheckInTime = &t
	rec.Shift = shift
	rec.Status = status
	rec.Punctuality = punctuality
	return nil
}

func (f *fakeAttendanceRepo) RecordCheckOut(_ context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay) error {
	rec, ok := f.records[ledgerKey{employeeID, date}]
	if !ok || rec.CheckInTime == nil || rec.CheckOutTime != nil {
		return attendance.ErrNoActiveCheckIn
	}
	rec.CheckOutTime = &t
	return nil
}

func (f *fakeAttendanceRepo) AutoCheckOut(_ context.Context, shift employee.Shift, date clock.Date, cutoff clock.TimeOfDay, roles []employee.Role) (int64, error) {
	return 0, nil
}

func (f *fakeAttendanceRepo) FinalizeDay(_ context.Context, date clock.Date, opts attendance.FinalizeOptions) (attendance.FinalizeResult, error) {
	return attendance.FinalizeResult{}, nil
}

func (f *fakeAttendanceRepo) GetByEmployee(_ context.Context, employeeID int64) ([]attendance.AttendanceRecord, error) {
	var result []attendance.AttendanceRecord
	for key, rec := range f.records {
		if key.employeeID == employeeID {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (f *fakeAttendanceRepo) GetByDate(_ context.Context, date clock.Date) ([]attendance.AttendanceRecord, error) {
	var result []attendance.AttendanceRecord
	for key, rec := range f.records {
		if key.date == date {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID int64, date clock.Date) (*attendance.AttendanceRecord, error) {
	rec, ok := f.records[ledgerKey{employeeID, date}]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeAttendanceRepo) Summary(_ context.Context, date clock.Date) (map[attendance.Status]int64, error) {
	counts := make(map[attendance.Status]int64)
	for key, rec := range f.records {
		if key.date == date {
			counts[rec.Status]++
		}
	}
	return counts, nil
}

func newTestService(at time.Time, employees ...employee.Employee) (attendance.AttendanceService, *fakeAttendanceRepo) {
	empRepo := &fakeEmployeeRepo{employees: make(map[int64]employee.Employee)}
	for _, emp := range employees {
		empRepo.employees[emp.ID] = emp
	}
	attRepo := newFakeAttendanceRepo()
	svc := NewAttendanceService(
		nil,
		attRepo,
		empRepo,
		clock.Fixed(at),
		geofence.New(testSiteLat, testSiteLng, 100),
		policy.Default(),
	)
	return svc, attRepo
}

func dayEmployee(id int64) employee.Employee {
	return employee.Employee{ID: id, Name: "Amina", Role: employee.RoleStaff, Shift: employee.ShiftDay}
}

func nightEmployee(id int64) employee.Employee {
	return employee.Employee{ID: id, Name: "Juma", Role: employee.RoleStaff, Shift: employee.ShiftNight}
}

func TestCheckIn_OnTime(t *testing.T) {
	// Monday 2024-03-04 07:45
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, repo := newTestService(now, dayEmployee(1))

	resp, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, "07:45:00", resp.Time)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	require.NotNil(t, resp.Punctuality)
	assert.Equal(t, 25, *resp.Punctuality) // 15 minutes left of the 07:00-08:00 ramp

	rec, err := repo.GetByEmployeeAndDate(context.Background(), 1, "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, employee.ShiftDay, rec.Shift)
}

func TestCheckIn_Late(t *testing.T) {
	now := time.Date(2024, 3, 4, 8, 30, 0, 0, testLoc)
	svc, _ := newTestService(now, dayEmployee(1))

	resp, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), resp.Status)
	require.NotNil(t, resp.Punctuality)
	assert.Equal(t, 0, *resp.Punctuality)
}

func TestCheckIn_OutsideWindow(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, testLoc)
	svc, _ := newTestService(now, dayEmployee(1))

	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	assert.ErrorIs(t, err, attendance.ErrOutsideWindow)
}

func TestCheckIn_OutsideGeofence(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, _ := newTestService(now, dayEmployee(1))

	// ~150m north of the site, past the 100m fence
	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat + 0.00135),
		Longitude:  coord(testSiteLng),
	})
	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)
}

func TestCheckIn_MissingCoordinates(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, _ := newTestService(now, dayEmployee(1))

	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{EmployeeID: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, attendance.ErrOutsideGeofence)
}

func TestCheckIn_Twice(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, _ := newTestService(now, dayEmployee(1))

	req := attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	}

	_, err := svc.CheckIn(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrCheckInRecorded)
}

func TestCheckIn_UnknownEmployee(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, _ := newTestService(now)

	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: 42,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCheckOut_DayShift(t *testing.T) {
	// Check in Monday morning, check out the same evening.
	morning := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, repo := newTestService(morning, dayEmployee(1))

	req := attendance.CheckInRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	}
	_, err := svc.CheckIn(context.Background(), req)
	require.NoError(t, err)

	evening := time.Date(2024, 3, 4, 18, 15, 0, 0, testLoc)
	svc2 := NewAttendanceService(nil, repo, &fakeEmployeeRepo{employees: map[int64]employee.Employee{1: dayEmployee(1)}},
		clock.Fixed(evening), geofence.New(testSiteLat, testSiteLng, 100), policy.Default())

	resp, err := svc2.CheckOut(context.Background(), attendance.CheckOutRequest(req))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, "18:15:00", resp.Time)

	rec, err := repo.GetByEmployeeAndDate(context.Background(), 1, "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckOutTime)
	assert.Equal(t, "18:15:00", rec.CheckOutTime.String())
	// Checkout never changes the status set at check-in.
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestCheckOut_NightShiftPreviousDay(t *testing.T) {
	// Night check-in Monday 20:10 (late), checkout Tuesday would be
	// guarded for staff, so use Thursday night into Friday morning.
	nightIn := time.Date(2024, 3, 7, 20, 10, 0, 0, testLoc) // Thursday
	svc, repo := newTestService(nightIn, nightEmployee(2))

	req := attendance.CheckInRequest{
		EmployeeID: 2,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	}
	resp, err := svc.CheckIn(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), resp.Status)
	assert.Equal(t, "2024-03-07", resp.Date)

	morning := time.Date(2024, 3, 8, 6, 30, 0, 0, testLoc) // Friday
	svc2 := NewAttendanceService(nil, repo, &fakeEmployeeRepo{employees: map[int64]employee.Employee{2: nightEmployee(2)}},
		clock.Fixed(morning), geofence.New(testSiteLat, testSiteLng, 100), policy.Default())

	out, err := svc2.CheckOut(context.Background(), attendance.CheckOutRequest(req))
	require.NoError(t, err)
	// The checkout closes Thursday's record, not Friday's.
	assert.Equal(t, "2024-03-07", out.Date)

	rec, err := repo.GetByEmployeeAndDate(context.Background(), 2, "2024-03-07")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckOutTime)
	assert.Equal(t, "06:30:00", rec.CheckOutTime.String())
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	evening := time.Date(2024, 3, 4, 18, 15, 0, 0, testLoc)
	svc, _ := newTestService(evening, dayEmployee(1))

	_, err := svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID: 1,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestCheckOut_GuardedWeekday(t *testing.T) {
	// Tuesday morning night checkout is blocked for staff before 09:00,
	// which covers the whole 06:00-07:55 window.
	morning := time.Date(2024, 3, 5, 6, 30, 0, 0, testLoc) // Tuesday
	svc, _ := newTestService(morning, nightEmployee(2))

	_, err := svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID: 2,
		Latitude:   coord(testSiteLat),
		Longitude:  coord(testSiteLng),
	})
	assert.ErrorIs(t, err, attendance.ErrOutsideWindow)
}

func TestGetSummary(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, repo := newTestService(now, dayEmployee(1))

	require.NoError(t, repo.EnsureRecord(context.Background(), 1, "2024-03-04"))
	require.NoError(t, repo.EnsureRecord(context.Background(), 2, "2024-03-04"))
	ci := clock.MustTimeOfDay("07:40:00")
	require.NoError(t, repo.RecordCheckIn(context.Background(), 1, "2024-03-04", ci, employee.ShiftDay, attendance.StatusPresent, nil))

	resp, err := svc.GetSummary(context.Background(), "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, int64(1), resp.Counts[string(attendance.StatusPresent)])
	assert.Equal(t, int64(1), resp.Counts[string(attendance.StatusPending)])
	assert.Equal(t, int64(2), resp.Total)
}

func TestGetSummary_InvalidDate(t *testing.T) {
	now := time.Date(2024, 3, 4, 7, 45, 0, 0, testLoc)
	svc, _ := newTestService(now)

	_, err := svc.GetSummary(context.Background(), "not-a-date")
	assert.Error(t, err)
}

func TestPunctualityScore(t *testing.T) {
	tests := []struct {
		shift employee.Shift
		at    string
		want  int
	}{
		{employee.ShiftDay, "06:45:00", 100},
		{employee.ShiftDay, "07:00:00", 100},
		{employee.ShiftDay, "07:30:00", 50},
		{employee.ShiftDay, "07:45:00", 25},
		{employee.ShiftDay, "08:00:00", 0},
		{employee.ShiftDay, "08:30:00", 0},
		{employee.ShiftNight, "19:00:00", 100},
		{employee.ShiftNight, "19:30:00", 50},
		{employee.ShiftNight, "20:00:00", 0},
	}

	for _, tt := range tests {
		got := punctualityScore(tt.shift, clock.MustTimeOfDay(tt.at))
		if got != tt.want {
			t.Errorf("punctualityScore(%s, %s) = %d, want %d", tt.shift, tt.at, got, tt.want)
		}
	}
}

package attendance

import (
	"time"

	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// AttendanceRecord is the authoritative ledger row for one employee on one
// business date. At most one record exists per (employee_id, date); the
// day-open job creates it as pending and later mutations only move the
// status forward (pending -> present|late -> absent|late terminal).
type AttendanceRecord struct {
	ID           string
	EmployeeID   int64
	Date         clock.Date
	Shift        employee.Shift
	CheckInTime  *clock.TimeOfDay
	CheckOutTime *clock.TimeOfDay
	Status       Status
	Punctuality  *int
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName *string
	EmployeeRole *string
}

package employee

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleField Role = "field"
)

type Shift string

const (
	ShiftDay         Shift = "day"
	ShiftNight       Shift = "night"
	ShiftUnspecified Shift = ""
)

// Employee is read-only reference data from the engine's perspective;
// employee CRUD lives outside this service.
type Employee struct {
	ID        int64
	Name      string
	Email     *string
	Role      Role
	Shift     Shift
	CreatedAt time.Time
	UpdatedAt time.Time
}

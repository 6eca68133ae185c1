package employee

import "context"

// EmployeeRepository reads employee metadata (role, shift assignment).
// The attendance engine never writes employees.
type EmployeeRepository interface {
	// GetByID retrieves a single employee
	GetByID(ctx context.Context, id int64) (Employee, error)

	// ListActive retrieves all employees eligible for attendance tracking
	ListActive(ctx context.Context) ([]Employee, error)
}

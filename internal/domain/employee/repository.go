package employee

import "context"

// EmployeeRepository is read-only; employees are owned by the HR module.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActive(ctx context.Context) ([]Employee, error)
}

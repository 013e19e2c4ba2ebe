package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

type EmployeeRepository struct {
	mu        sync.Mutex
	employees map[string]employee.Employee

	GetActiveErr error
}

func NewEmployeeRepository(employees ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee)}
	for _, emp := range employees {
		r.employees[emp.ID] = emp
	}
	return r
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

// Put inserts or replaces an employee.
func (r *EmployeeRepository) Put(emp employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[emp.ID] = emp
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *EmployeeRepository) GetActive(ctx context.Context) ([]employee.Employee, error) {
	if r.GetActiveErr != nil {
		return nil, r.GetActiveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var active []employee.Employee
	for _, emp := range r.employees {
		if emp.EmploymentStatus == employee.EmploymentStatusActive {
			active = append(active, emp)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].FullName != active[j].FullName {
			return active[i].FullName < active[j].FullName
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

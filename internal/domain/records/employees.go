package records

import (
	"context"
	"errors"
)

const EmployeeIDPrefix = "emp_"

// Employees returns every employee with the schema back-fill applied. Records
// that needed a back-fill are written back so generated ids stay stable.
func (s *Store) Employees(ctx context.Context) ([]Employee, error) {
	employees, changed, err := s.loadEmployees(ctx)
	if err != nil || !changed {
		return employees, err
	}

	// The first read may be stale by now.
	ctx, unlock := s.Lock(ctx)
	defer unlock()
	employees, changed, err = s.loadEmployees(ctx)
	if err != nil || !changed {
		return employees, err
	}
	if err := s.SetEmployees(ctx, employees); err != nil {
		return employees, err
	}
	return employees, nil
}

func (s *Store) loadEmployees(ctx context.Context) ([]Employee, bool, error) {
	employees, err := Get[Employee](ctx, s, Employees)
	if err != nil {
		return employees, false, err
	}
	changed := false
	for i := range employees {
		if s.EnsureSchema(&employees[i]) {
			changed = true
		}
	}
	return employees, changed, nil
}

func (s *Store) SetEmployees(ctx context.Context, employees []Employee) error {
	return Set(ctx, s, Employees, employees)
}

// FindEmployeeByID matches ids stored as strings or as legacy numbers.
func (s *Store) FindEmployeeByID(ctx context.Context, id string) (Employee, bool, error) {
	employees, err := s.Employees(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return Employee{}, false, err
	}
	idx := indexOfEmployee(employees, id)
	if idx < 0 {
		return Employee{}, false, nil
	}
	return employees[idx], true, nil
}

// SaveEmployee replaces the employee with the same id in place, or appends it.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) (Employee, error) {
	ctx, unlock := s.Lock(ctx)
	defer unlock()
	s.EnsureSchema(&emp)
	employees, err := s.Employees(ctx)
	if err != nil {
		return Employee{}, err
	}
	employees = upsertEmployee(employees, emp)
	if err := s.SetEmployees(ctx, employees); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	ctx, unlock := s.Lock(ctx)
	defer unlock()
	employees, err := s.Employees(ctx)
	if err != nil {
		return err
	}
	idx := indexOfEmployee(employees, id)
	if idx < 0 {
		return ErrNotFound
	}
	employees = append(employees[:idx], employees[idx+1:]...)
	return s.SetEmployees(ctx, employees)
}

// EnsureSchema back-fills a missing id and nil embedded lists. It reports
// whether anything changed; a second call is always a no-op.
func (s *Store) EnsureSchema(emp *Employee) bool {
	changed := false
	if emp.ID == "" {
		emp.ID = RecordID(s.NextID(EmployeeIDPrefix))
		changed = true
	}
	if emp.Documents == nil {
		emp.Documents = []Document{}
		changed = true
	}
	if emp.Processes == nil {
		emp.Processes = []Process{}
		changed = true
	}
	if emp.TimeEntries == nil {
		emp.TimeEntries = []TimeEntry{}
		changed = true
	}
	return changed
}

func indexOfEmployee(employees []Employee, id string) int {
	if id == "" {
		return -1
	}
	for i, emp := range employees {
		if emp.ID.String() == id {
			return i
		}
	}
	return -1
}

func upsertEmployee(employees []Employee, emp Employee) []Employee {
	if idx := indexOfEmployee(employees, emp.ID.String()); idx >= 0 {
		employees[idx] = emp
		return employees
	}
	return append(employees, emp)
}

// StageEmployee is SaveEmployee for a batch: it upserts into the given slice
// and stages the result.
func StageEmployee(b *Batch, employees []Employee, emp Employee) []Employee {
	employees = upsertEmployee(employees, emp)
	Put(b, Employees, employees)
	return employees
}

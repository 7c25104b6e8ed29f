package hr

import (
	"context"
	"errors"
	"sort"
	"strings"

	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/domain/taxid"
)

type EmployeeInput struct {
	Name       string `json:"name" validate:"required"`
	TaxID      string `json:"cpf" validate:"required,taxid"`
	Email      string `json:"email" validate:"required,email_shape"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Position   string `json:"position"`
	Salary     string `json:"salary" validate:"omitempty,numeric"`
	Department string `json:"dept"`
	HireDate   string `json:"hire" validate:"required,pastdate"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Inactive Ativo Inativo active inactive"`
}

func (in EmployeeInput) normalized() EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.Salary = strings.TrimSpace(in.Salary)
	in.Department = strings.TrimSpace(in.Department)
	in.HireDate = strings.TrimSpace(in.HireDate)
	in.Status = strings.TrimSpace(in.Status)
	return in
}

type EmployeeFilter struct {
	Query      string
	Department string
	Status     string
}

func (f EmployeeFilter) match(emp records.Employee) bool {
	if f.Department != "" && !strings.EqualFold(emp.Department, f.Department) {
		return false
	}
	if f.Status != "" && records.NormalizeStatus(emp.Status) != records.NormalizeStatus(f.Status) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(emp.Name), q) ||
		strings.Contains(strings.ToLower(emp.Email), q) ||
		strings.Contains(strings.ToLower(emp.Position), q) {
		return true
	}
	digits := taxid.Normalize(q)
	return digits != "" && strings.Contains(taxid.Normalize(emp.TaxID), digits)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]records.Employee, error) {
	employees, err := lenient(s.Store.Employees(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]records.Employee, 0, len(employees))
	for _, emp := range employees {
		if filter.match(emp) {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (s *Service) GetEmployee(ctx context.Context, id string) (records.Employee, error) {
	return s.employee(ctx, id)
}

// Departments lists the distinct non-empty departments, sorted.
func (s *Service) Departments(ctx context.Context) ([]string, error) {
	employees, err := lenient(s.Store.Employees(ctx))
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, emp := range employees {
		dept := strings.TrimSpace(emp.Department)
		if dept == "" {
			continue
		}
		if _, ok := seen[dept]; ok {
			continue
		}
		seen[dept] = struct{}{}
		out = append(out, dept)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) CreateEmployee(ctx context.Context, sess session.Session, in EmployeeInput) (records.Employee, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = in.normalized()
	if err := s.Checker.Struct(in); err != nil {
		return records.Employee{}, err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return records.Employee{}, err
	}
	emp := records.Employee{}
	applyEmployeeInput(&emp, in)
	if taxIDTaken(employees, emp.TaxID, "") {
		return records.Employee{}, ErrDuplicateTaxID
	}
	s.Store.EnsureSchema(&emp)
	employees = append(employees, emp)
	if err := s.Store.SetEmployees(ctx, employees); err != nil {
		return records.Employee{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityEmployee, emp.ID.String())
	return emp, nil
}

// UpdateEmployee replaces the editable fields. Embedded documents, processes
// and time entries are kept.
func (s *Service) UpdateEmployee(ctx context.Context, sess session.Session, id string, in EmployeeInput) (records.Employee, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = in.normalized()
	if err := s.Checker.Struct(in); err != nil {
		return records.Employee{}, err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return records.Employee{}, err
	}
	idx := indexOf(employees, id, employeeKey)
	if idx < 0 {
		return records.Employee{}, ErrEmployeeNotFound
	}
	emp := employees[idx]
	applyEmployeeInput(&emp, in)
	if taxIDTaken(employees, emp.TaxID, emp.ID.String()) {
		return records.Employee{}, ErrDuplicateTaxID
	}
	employees[idx] = emp
	if err := s.Store.SetEmployees(ctx, employees); err != nil {
		return records.Employee{}, err
	}
	s.record(ctx, sess, ActionUpdate, EntityEmployee, emp.ID.String())
	return emp, nil
}

// DeleteEmployee asks for the acting user's password first. The employee is
// also dropped from every training enrollment in the same write.
func (s *Service) DeleteEmployee(ctx context.Context, sess session.Session, id, password string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	if s.Auth != nil {
		if err := s.Auth.ConfirmPassword(ctx, sess.Username, password); err != nil {
			return err
		}
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(employees, id, employeeKey)
	if idx < 0 {
		return ErrEmployeeNotFound
	}
	employees = removeAt(employees, idx)

	trainings, err := records.Get[records.Training](ctx, s.Store, records.Trainings)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return err
	}
	trainingsChanged := false
	for i := range trainings {
		if next, ok := without(trainings[i].Enrolled, id); ok {
			trainings[i].Enrolled = next
			trainingsChanged = true
		}
	}

	batch := s.Store.NewBatch()
	records.Put(batch, records.Employees, employees)
	if trainingsChanged {
		records.Put(batch, records.Trainings, trainings)
	}
	if err := s.Store.Commit(ctx, batch); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityEmployee, id)
	return nil
}

func (s *Service) AttachEmployeeDocument(ctx context.Context, sess session.Session, id string, up documents.Upload) (records.Document, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return records.Document{}, err
	}
	idx := indexOf(employees, id, employeeKey)
	if idx < 0 {
		return records.Document{}, ErrEmployeeNotFound
	}
	doc, err := s.newDocument(up, employees[idx].Documents)
	if err != nil {
		return records.Document{}, err
	}
	employees[idx].Documents = append(employees[idx].Documents, doc)
	if err := s.Store.SetEmployees(ctx, employees); err != nil {
		return records.Document{}, err
	}
	s.record(ctx, sess, ActionAttach, EntityDocument, id)
	return doc, nil
}

func (s *Service) EmployeeDocument(ctx context.Context, id string, docID int64) (records.Document, error) {
	emp, err := s.employee(ctx, id)
	if err != nil {
		return records.Document{}, err
	}
	for _, doc := range emp.Documents {
		if doc.ID == docID {
			return doc, nil
		}
	}
	return records.Document{}, ErrDocumentNotFound
}

func (s *Service) RemoveEmployeeDocument(ctx context.Context, sess session.Session, id string, docID int64) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(employees, id, employeeKey)
	if idx < 0 {
		return ErrEmployeeNotFound
	}
	docs, ok := documents.Remove(employees[idx].Documents, docID)
	if !ok {
		return ErrDocumentNotFound
	}
	employees[idx].Documents = docs
	if err := s.Store.SetEmployees(ctx, employees); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDetach, EntityDocument, id)
	return nil
}

func applyEmployeeInput(emp *records.Employee, in EmployeeInput) {
	emp.Name = in.Name
	emp.TaxID = taxid.Normalize(in.TaxID)
	emp.Email = in.Email
	emp.Phone = fields.Digits(in.Phone)
	emp.Position = in.Position
	emp.Salary = in.Salary
	emp.Department = in.Department
	emp.HireDate = in.HireDate
	emp.Status = records.NormalizeStatus(in.Status)
	if emp.Status == "" {
		emp.Status = records.StatusActive
	}
}

func taxIDTaken(employees []records.Employee, digits, exceptID string) bool {
	for _, emp := range employees {
		if emp.ID.String() == exceptID && exceptID != "" {
			continue
		}
		if taxid.Normalize(emp.TaxID) == digits {
			return true
		}
	}
	return false
}

func without(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

package hr

import (
	"context"
	"strings"

	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
)

type ProcessInput struct {
	EmployeeID  string `json:"employeeId" validate:"required"`
	Date        string `json:"date" validate:"required,pastdate"`
	Title       string `json:"title" validate:"required"`
	Severity    string `json:"severity" validate:"required,oneof=Light Medium Grave"`
	Description string `json:"description"`
}

func (s *Service) ListProcesses(ctx context.Context, employeeID string) ([]records.Process, error) {
	processes, err := lenient(load(ctx, s.Store, records.DisciplinaryProcesses, processKey))
	if err != nil {
		return nil, err
	}
	out := []records.Process{}
	for _, p := range processes {
		if employeeID != "" && p.EmployeeID.String() != employeeID {
			continue
		}
		if p.Documents == nil {
			p.Documents = []records.Document{}
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateProcess writes the process to the global list and to the employee's
// embedded list together.
func (s *Service) CreateProcess(ctx context.Context, sess session.Session, in ProcessInput) (records.Process, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimProcess(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Process{}, err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return records.Process{}, err
	}
	idx := indexOf(employees, in.EmployeeID, employeeKey)
	if idx < 0 {
		return records.Process{}, ErrEmployeeNotFound
	}
	processes, err := load(ctx, s.Store, records.DisciplinaryProcesses, processKey)
	if err != nil {
		return records.Process{}, err
	}
	emp := &employees[idx]
	p := records.Process{
		ID:           newID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Date:         in.Date,
		Title:        in.Title,
		Severity:     in.Severity,
		Description:  in.Description,
		Documents:    []records.Document{},
	}
	processes = append(processes, p)
	emp.Processes = append(emp.Processes, p)
	if err := s.commitProcesses(ctx, processes, employees); err != nil {
		return records.Process{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityProcess, p.ID.String())
	return p, nil
}

func (s *Service) DeleteProcess(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	processes, employees, err := s.loadProcesses(ctx)
	if err != nil {
		return err
	}
	found := false
	if idx := indexOf(processes, id, processKey); idx >= 0 {
		processes = removeAt(processes, idx)
		found = true
	}
	for i := range employees {
		if idx := indexOf(employees[i].Processes, id, processKey); idx >= 0 {
			employees[i].Processes = removeAt(employees[i].Processes, idx)
			found = true
		}
	}
	if !found {
		return ErrProcessNotFound
	}
	if err := s.commitProcesses(ctx, processes, employees); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityProcess, id)
	return nil
}

// AttachProcessDocument adds the document to both copies of the process.
func (s *Service) AttachProcessDocument(ctx context.Context, sess session.Session, id string, up documents.Upload) (records.Document, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	processes, employees, err := s.loadProcesses(ctx)
	if err != nil {
		return records.Document{}, err
	}
	idx := indexOf(processes, id, processKey)
	if idx < 0 {
		return records.Document{}, ErrProcessNotFound
	}
	doc, err := s.newDocument(up, processes[idx].Documents)
	if err != nil {
		return records.Document{}, err
	}
	processes[idx].Documents = append(processes[idx].Documents, doc)
	updateEmbeddedProcess(employees, processes[idx])
	if err := s.commitProcesses(ctx, processes, employees); err != nil {
		return records.Document{}, err
	}
	s.record(ctx, sess, ActionAttach, EntityDocument, id)
	return doc, nil
}

func (s *Service) RemoveProcessDocument(ctx context.Context, sess session.Session, id string, docID int64) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	processes, employees, err := s.loadProcesses(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(processes, id, processKey)
	if idx < 0 {
		return ErrProcessNotFound
	}
	docs, ok := documents.Remove(processes[idx].Documents, docID)
	if !ok {
		return ErrDocumentNotFound
	}
	processes[idx].Documents = docs
	updateEmbeddedProcess(employees, processes[idx])
	if err := s.commitProcesses(ctx, processes, employees); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDetach, EntityDocument, id)
	return nil
}

func (s *Service) loadProcesses(ctx context.Context) ([]records.Process, []records.Employee, error) {
	processes, err := load(ctx, s.Store, records.DisciplinaryProcesses, processKey)
	if err != nil {
		return nil, nil, err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return nil, nil, err
	}
	return processes, employees, nil
}

func (s *Service) commitProcesses(ctx context.Context, processes []records.Process, employees []records.Employee) error {
	batch := s.Store.NewBatch()
	records.Put(batch, records.DisciplinaryProcesses, processes)
	records.Put(batch, records.Employees, employees)
	return s.Store.Commit(ctx, batch)
}

func updateEmbeddedProcess(employees []records.Employee, p records.Process) {
	for i := range employees {
		if employees[i].ID != p.EmployeeID {
			continue
		}
		if idx := indexOf(employees[i].Processes, p.ID.String(), processKey); idx >= 0 {
			employees[i].Processes[idx] = p
		}
	}
}

func trimProcess(in ProcessInput) ProcessInput {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Date = strings.TrimSpace(in.Date)
	in.Title = strings.TrimSpace(in.Title)
	in.Severity = strings.TrimSpace(in.Severity)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

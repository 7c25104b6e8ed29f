package hr

import (
	"context"
	"errors"
	"strings"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/domain/session"
)

// TimeEntryInput has no hours field: hours are always derived from the clock
// times.
type TimeEntryInput struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Date       string `json:"date" validate:"required,pastdate"`
	ClockIn    string `json:"in" validate:"required"`
	ClockOut   string `json:"out"`
	Notes      string `json:"notes"`
}

type TimeEntryFilter struct {
	EmployeeID string
	From       string
	To         string
}

func (f TimeEntryFilter) match(e records.TimeEntry) bool {
	if f.EmployeeID != "" && e.EmployeeID.String() != f.EmployeeID {
		return false
	}
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	return true
}

func (s *Service) ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]records.TimeEntry, error) {
	entries, err := lenient(load(ctx, s.Store, records.TimeTracking, timeEntryKey))
	if err != nil {
		return nil, err
	}
	out := []records.TimeEntry{}
	for _, e := range entries {
		if filter.match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// CreateTimeEntry appends to the global time tracking list and to the
// employee's embedded list in one all-or-nothing write.
func (s *Service) CreateTimeEntry(ctx context.Context, sess session.Session, in TimeEntryInput) (records.TimeEntry, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimTimeEntry(in)
	if err := s.checkTimeEntry(in); err != nil {
		return records.TimeEntry{}, err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return records.TimeEntry{}, err
	}
	idx := indexOf(employees, in.EmployeeID, employeeKey)
	if idx < 0 {
		return records.TimeEntry{}, ErrEmployeeNotFound
	}
	entries, err := load(ctx, s.Store, records.TimeTracking, timeEntryKey)
	if err != nil {
		return records.TimeEntry{}, err
	}

	emp := &employees[idx]
	entry := records.TimeEntry{
		ID:           newID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Date:         in.Date,
		ClockIn:      in.ClockIn,
		ClockOut:     in.ClockOut,
		Hours:        records.Decimal(reports.HoursWorked(in.ClockIn, in.ClockOut)),
		Notes:        in.Notes,
	}
	entries = append(entries, entry)
	emp.TimeEntries = append(emp.TimeEntries, entry)

	batch := s.Store.NewBatch()
	records.Put(batch, records.TimeTracking, entries)
	records.Put(batch, records.Employees, employees)
	if err := s.Store.Commit(ctx, batch); err != nil {
		return records.TimeEntry{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityTimeEntry, entry.ID.String())
	return entry, nil
}

// DeleteTimeEntry removes the entry from both lists together.
func (s *Service) DeleteTimeEntry(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	entries, err := load(ctx, s.Store, records.TimeTracking, timeEntryKey)
	if err != nil {
		return err
	}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return err
	}
	found := false
	if idx := indexOf(entries, id, timeEntryKey); idx >= 0 {
		entries = removeAt(entries, idx)
		found = true
	}
	for i := range employees {
		if idx := indexOf(employees[i].TimeEntries, id, timeEntryKey); idx >= 0 {
			employees[i].TimeEntries = removeAt(employees[i].TimeEntries, idx)
			found = true
		}
	}
	if !found {
		return ErrTimeEntryNotFound
	}
	batch := s.Store.NewBatch()
	records.Put(batch, records.TimeTracking, entries)
	records.Put(batch, records.Employees, employees)
	if err := s.Store.Commit(ctx, batch); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityTimeEntry, id)
	return nil
}

func (s *Service) checkTimeEntry(in TimeEntryInput) error {
	verr := &fields.ValidationError{}
	if err := s.Checker.Struct(in); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	if in.ClockIn != "" {
		if _, ok := reports.ClockMinutes(in.ClockIn); !ok {
			verr.Add("in", "must be a time in HH:MM format")
		}
	}
	if in.ClockOut != "" {
		if _, ok := reports.ClockMinutes(in.ClockOut); !ok {
			verr.Add("out", "must be a time in HH:MM format")
		}
	}
	return verr.Err()
}

func trimTimeEntry(in TimeEntryInput) TimeEntryInput {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Date = strings.TrimSpace(in.Date)
	in.ClockIn = strings.TrimSpace(in.ClockIn)
	in.ClockOut = strings.TrimSpace(in.ClockOut)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

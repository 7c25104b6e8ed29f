package hr

import (
	"context"
	"errors"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/domain/taxid"
)

type RejectedRow struct {
	Row    int            `json:"row"`
	Issues []fields.Issue `json:"issues"`
}

type ImportResult struct {
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Rejected []RejectedRow `json:"rejected"`
}

// ImportEmployees validates every row and upserts the valid ones by tax id in
// a single write. Invalid rows are reported and skipped. Rows are numbered
// from 1.
func (s *Service) ImportEmployees(ctx context.Context, sess session.Session, rows []EmployeeInput) (ImportResult, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	result := ImportResult{Rejected: []RejectedRow{}}
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return result, err
	}
	byTaxID := map[string]int{}
	for i, emp := range employees {
		byTaxID[taxid.Normalize(emp.TaxID)] = i
	}

	for i, in := range rows {
		in = in.normalized()
		if err := s.Checker.Struct(in); err != nil {
			var verr *fields.ValidationError
			if !errors.As(err, &verr) {
				return result, err
			}
			result.Rejected = append(result.Rejected, RejectedRow{Row: i + 1, Issues: verr.Issues})
			continue
		}
		digits := taxid.Normalize(in.TaxID)
		if idx, ok := byTaxID[digits]; ok {
			applyEmployeeInput(&employees[idx], in)
			result.Updated++
			continue
		}
		emp := records.Employee{}
		applyEmployeeInput(&emp, in)
		s.Store.EnsureSchema(&emp)
		employees = append(employees, emp)
		byTaxID[digits] = len(employees) - 1
		result.Created++
	}

	if result.Created+result.Updated == 0 {
		return result, nil
	}
	if err := s.Store.SetEmployees(ctx, employees); err != nil {
		return result, err
	}
	s.record(ctx, sess, ActionImport, EntityEmployee, "")
	return result, nil
}

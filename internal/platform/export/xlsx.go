package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/taxid"
)

const (
	SheetEmployees = "Employees"
	SheetLateness  = "Lateness"
	SheetSummary   = "Summary"
)

// Workbook builds an xlsx file with one sheet each for employees, this
// week's lateness and the summary counters.
func Workbook(r Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetEmployees); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetLateness); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeEmployees(f, r.Employees, headerStyle); err != nil {
		return nil, err
	}
	if err := writeLateness(f, r, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSummary(f, r, headerStyle); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	return f.WriteToBuffer()
}

func writeEmployees(f *excelize.File, employees []records.Employee, headerStyle int) error {
	if err := writeRow(f, SheetEmployees, 1, toAny(employeeHeader)); err != nil {
		return err
	}
	if err := styleRow(f, SheetEmployees, 1, len(employeeHeader), headerStyle); err != nil {
		return err
	}
	for i, emp := range employees {
		row := []any{
			emp.Name,
			taxid.Format(emp.TaxID),
			emp.Email,
			fields.FormatPhone(emp.Phone),
			emp.Position,
			emp.Salary,
			emp.Department,
			emp.HireDate,
			records.NormalizeStatus(emp.Status),
		}
		if err := writeRow(f, SheetEmployees, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetEmployees, "A", "I", 18)
}

func writeLateness(f *excelize.File, r Report, headerStyle int) error {
	title := fmt.Sprintf("Week %s to %s", r.WeekStart.Format(fields.DateLayout), r.WeekEnd.Format(fields.DateLayout))
	if err := f.SetCellValue(SheetLateness, "A1", title); err != nil {
		return err
	}
	header := []any{"Employee ID", "Employee", "Hours Late"}
	if err := writeRow(f, SheetLateness, 2, header); err != nil {
		return err
	}
	if err := styleRow(f, SheetLateness, 2, len(header), headerStyle); err != nil {
		return err
	}
	for i, row := range r.Lateness {
		if err := writeRow(f, SheetLateness, i+3, []any{row.EmployeeID, row.EmployeeName, row.HoursLate}); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetLateness, "A", "C", 22)
}

func writeSummary(f *excelize.File, r Report, headerStyle int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Total employees", r.Summary.TotalEmployees},
		{"Active", r.Summary.Active},
		{"Inactive", r.Summary.Inactive},
		{"Trainings", r.Summary.Trainings},
		{"Average salary", r.Summary.AverageSalary},
	}
	depts := make([]string, 0, len(r.Summary.ByDepartment))
	for dept := range r.Summary.ByDepartment {
		depts = append(depts, dept)
	}
	sort.Strings(depts)
	for _, dept := range depts {
		rows = append(rows, []any{"Department: " + dept, r.Summary.ByDepartment[dept]})
	}
	for i, row := range rows {
		if err := writeRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := styleRow(f, SheetSummary, 1, 2, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

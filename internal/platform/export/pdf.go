package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"hrdesk/internal/domain/fields"
)

// SummaryPDF renders the dashboard counters and this week's lateness on a
// single A4 page.
func SummaryPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("HR summary", true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "HR summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated: "+r.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Total employees: %d", r.Summary.TotalEmployees),
		fmt.Sprintf("Active: %d", r.Summary.Active),
		fmt.Sprintf("Inactive: %d", r.Summary.Inactive),
		fmt.Sprintf("Trainings: %d", r.Summary.Trainings),
		fmt.Sprintf("Average salary: %.2f", r.Summary.AverageSalary),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(7)
	}

	if len(r.Summary.ByDepartment) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "By department")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		depts := make([]string, 0, len(r.Summary.ByDepartment))
		for dept := range r.Summary.ByDepartment {
			depts = append(depts, dept)
		}
		sort.Strings(depts)
		for _, dept := range depts {
			pdf.Cell(0, 7, fmt.Sprintf("%s: %d", dept, r.Summary.ByDepartment[dept]))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Lateness, week %s to %s", r.WeekStart.Format(fields.DateLayout), r.WeekEnd.Format(fields.DateLayout)))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Hours late", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if len(r.Lateness) == 0 {
		pdf.CellFormat(160, 7, "No time entries this week", "1", 1, "L", false, 0, "")
	}
	for _, row := range r.Lateness {
		pdf.CellFormat(120, 7, tr(row.EmployeeName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", row.HoursLate), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

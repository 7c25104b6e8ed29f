// Package export renders employee and report data as spreadsheets and PDFs,
// and reads employee spreadsheets back for import.
package export

import (
	"time"

	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PDFContentType  = "application/pdf"
)

// Report is everything the workbook and the PDF summary draw from.
type Report struct {
	GeneratedAt time.Time
	WeekStart   time.Time
	WeekEnd     time.Time
	Summary     reports.Summary
	Lateness    []reports.LatenessRow
	Employees   []records.Employee
}

var employeeHeader = []string{"Name", "CPF", "Email", "Phone", "Position", "Salary", "Department", "Hire Date", "Status"}

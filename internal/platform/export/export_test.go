package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/platform/kv"
)

func sampleReport() Report {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	start, end := reports.WeekRange(now)
	employees := []records.Employee{
		{ID: "emp_1", Name: "Ana Souza", TaxID: "52998224725", Email: "ana@example.com", Phone: "11987654321", Salary: "3500", Department: "Finance", HireDate: "2023-02-01", Status: "Ativo"},
		{ID: "emp_2", Name: "Bruno Lima", TaxID: "11144477735", Email: "bruno@example.com", Salary: "4500", Department: "Sales", HireDate: "2022-08-10", Status: "Inactive"},
	}
	return Report{
		GeneratedAt: now,
		WeekStart:   start,
		WeekEnd:     end,
		Summary:     reports.Summarize(employees, 1),
		Lateness:    []reports.LatenessRow{{EmployeeID: "emp_1", EmployeeName: "Ana Souza", HoursLate: 0.5}},
		Employees:   employees,
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	buf, err := Workbook(sampleReport())
	require.NoError(t, err)

	rows, err := ReadRows(bytes.NewReader(buf.Bytes()), "employees.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, employeeHeader, rows[0])
	assert.Equal(t, "529.982.247-25", rows[1][1])
	assert.Equal(t, "(11) 98765-4321", rows[1][3])
	assert.Equal(t, records.StatusActive, rows[1][8])

	inputs, err := EmployeeRows(rows)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "Bruno Lima", inputs[1].Name)
	assert.Equal(t, "2022-08-10", inputs[1].HireDate)
}

func TestWorkbookSheets(t *testing.T) {
	buf, err := Workbook(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetEmployees, SheetLateness, SheetSummary}, f.GetSheetList())

	name, err := f.GetCellValue(SheetLateness, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", name)

	total, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}

func TestEmployeeRowsAliases(t *testing.T) {
	rows := [][]string{
		{"Nome", "CPF", "E-mail", "Telefone", "Cargo", "Salário", "Departamento", "Admissão", "Status"},
		{"Carla", "390.533.447-05", "carla@example.com", "1133334444", "Dev", "5000", "IT", "45292", "Ativo"},
		{"", "", "", ""},
		{"Davi", "12345678909", "davi@example.com", "", "", "", "", "01/03/2024", ""},
	}
	inputs, err := EmployeeRows(rows)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "IT", inputs[0].Department)
	assert.Equal(t, "2024-01-01", inputs[0].HireDate)
	assert.Equal(t, "2024-03-01", inputs[1].HireDate)
}

func TestEmployeeRowsMissingColumns(t *testing.T) {
	_, err := EmployeeRows([][]string{{"Email", "Phone"}})
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "name")

	_, err = EmployeeRows(nil)
	assert.ErrorIs(t, err, ErrEmptyWorksheet)
}

func TestReadRowsRejectsGarbage(t *testing.T) {
	_, err := ReadRows(strings.NewReader("not a spreadsheet"), "upload.xlsx")
	assert.Error(t, err)
}

func TestSummaryPDF(t *testing.T) {
	data, err := SummaryPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	empty := sampleReport()
	empty.Lateness = nil
	empty.Summary = reports.Summarize(nil, 0)
	data, err = SummaryPDF(empty)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCollectFromStore(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	store := records.NewStore(kv.NewMemory(0), records.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, store.SetEmployees(ctx, sampleReport().Employees))
	require.NoError(t, records.Set(ctx, store, records.TimeTracking, []records.TimeEntry{
		{ID: "t1", EmployeeID: "emp_1", EmployeeName: "Ana Souza", Date: "2024-05-14", ClockIn: "09:30"},
	}))

	r, err := Collect(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Summary.TotalEmployees)
	require.Len(t, r.Lateness, 1)
	assert.InDelta(t, 0.5, r.Lateness[0].HoursLate, 0.001)
	assert.Len(t, r.Employees, 2)
	assert.Equal(t, "hrdesk-report-2024-05-15.pdf", FileName(now, ".pdf"))
}

package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/records"
	"hrdesk/internal/platform/kv"
)

func TestWeekRange(t *testing.T) {
	wednesday := time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)
	start, end := WeekRange(wednesday)

	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, 2024, end.Year())
	assert.Equal(t, 19, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, 7*24*time.Hour, end.Sub(start)+time.Nanosecond)
}

func TestWeekRangeSundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2024, 5, 19, 8, 0, 0, 0, time.UTC)
	start, _ := WeekRange(sunday)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), start)

	monday := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	start, _ = WeekRange(monday)
	assert.Equal(t, monday, start)
}

func TestWeeklyLateness(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	entries := []records.TimeEntry{
		{EmployeeID: "emp_1", EmployeeName: "Ana", Date: "2024-05-13", ClockIn: "09:15"},
		{EmployeeID: "emp_2", EmployeeName: "Bia", Date: "2024-05-13", ClockIn: "08:50"},
		{EmployeeID: "emp_1", EmployeeName: "Ana", Date: "2024-05-14", ClockIn: "09:30"},
		{EmployeeID: "emp_1", EmployeeName: "Ana", Date: "2024-05-06", ClockIn: "11:00"},
		{EmployeeID: "", EmployeeName: "Ghost", Date: "2024-05-14", ClockIn: "12:00"},
		{EmployeeID: "emp_3", EmployeeName: "Caio", Date: "2024-05-14", ClockIn: ""},
		{EmployeeID: "emp_3", EmployeeName: "Caio", Date: "not a date", ClockIn: "10:00"},
	}

	rows := WeeklyLateness(entries, now)
	require.Len(t, rows, 2)
	assert.Equal(t, LatenessRow{EmployeeID: "emp_1", EmployeeName: "Ana", HoursLate: 0.75}, rows[0])
	assert.Equal(t, LatenessRow{EmployeeID: "emp_2", EmployeeName: "Bia", HoursLate: 0}, rows[1])
}

func TestHoursWorked(t *testing.T) {
	assert.Equal(t, 8.5, HoursWorked("09:00", "17:30"))
	assert.Equal(t, 0.0, HoursWorked("", "17:30"))
	assert.Equal(t, 0.0, HoursWorked("09:00", ""))
	assert.Equal(t, 8.0, HoursWorked("22:00", "06:00"))
	assert.Equal(t, 0.33, HoursWorked("09:00", "09:20"))
	assert.Equal(t, 0.0, HoursWorked("25:00", "26:00"))
}

func TestSummarize(t *testing.T) {
	employees := []records.Employee{
		{Status: "Active", Salary: "3000", Department: "IT"},
		{Status: "Ativo", Salary: "5000.50", Department: "IT"},
		{Status: "Inativo", Salary: "abc", Department: "HR"},
		{Status: "Inactive", Salary: ""},
	}
	got := Summarize(employees, 3)
	assert.Equal(t, 4, got.TotalEmployees)
	assert.Equal(t, 2, got.Active)
	assert.Equal(t, 2, got.Inactive)
	assert.Equal(t, 3, got.Trainings)
	assert.Equal(t, 2000.13, got.AverageSalary)
	assert.Equal(t, map[string]int{"IT": 2, "HR": 1, "Unassigned": 1}, got.ByDepartment)
}

func TestSummarizeNoEmployees(t *testing.T) {
	got := Summarize(nil, 0)
	assert.Equal(t, 0.0, got.AverageSalary)
	assert.Equal(t, 0, got.TotalEmployees)
}

func TestParseDecimal(t *testing.T) {
	assert.Equal(t, 3500.5, ParseDecimal("3500.50"))
	assert.Equal(t, 12.0, ParseDecimal("12abc"))
	assert.Equal(t, 0.0, ParseDecimal("R$ 10"))
	assert.Equal(t, -4.0, ParseDecimal("-4"))
}

func TestServiceToleratesCorruptCollections(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory(0)
	require.NoError(t, backend.Set(ctx, records.Trainings, "oops"))
	require.NoError(t, backend.Set(ctx, records.Employees, `[{"id":"emp_1","status":"Active","salary":"100"}]`))
	store := records.NewStore(backend, records.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	summary, err := NewService(store).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.Equal(t, 0, summary.Trainings)
	assert.Equal(t, 100.0, summary.AverageSalary)
}

package reports

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
)

// ExpectedStartMinutes is 09:00, the reference for lateness.
const ExpectedStartMinutes = 9 * 60

type LatenessRow struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	HoursLate    float64 `json:"hoursLate"`
}

type Summary struct {
	TotalEmployees int            `json:"totalEmployees"`
	Active         int            `json:"active"`
	Inactive       int            `json:"inactive"`
	Trainings      int            `json:"trainings"`
	AverageSalary  float64        `json:"averageSalary"`
	ByDepartment   map[string]int `json:"byDepartment"`
}

// WeekRange returns the Monday 00:00 to Sunday 23:59:59.999999999 window
// containing ref, in ref's location. Sunday belongs to the week that started
// the Monday before it.
func WeekRange(ref time.Time) (time.Time, time.Time) {
	offset := (int(ref.Weekday()) + 6) % 7
	y, m, d := ref.Date()
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// WeeklyLateness sums minutes past 09:00 per employee for entries dated in the
// week containing now. Entries without an employee id or clock-in are skipped.
// Rows keep the order in which employees first appear.
func WeeklyLateness(entries []records.TimeEntry, now time.Time) []LatenessRow {
	start, end := WeekRange(now)
	minutes := map[string]int{}
	names := map[string]string{}
	var order []string

	for _, entry := range entries {
		id := entry.EmployeeID.String()
		if id == "" || strings.TrimSpace(entry.ClockIn) == "" {
			continue
		}
		day, err := fields.ParseDate(entry.Date, now.Location())
		if err != nil || day.Before(start) || day.After(end) {
			continue
		}
		clockIn, ok := ClockMinutes(entry.ClockIn)
		if !ok {
			continue
		}
		if _, seen := minutes[id]; !seen {
			order = append(order, id)
			minutes[id] = 0
		}
		if late := clockIn - ExpectedStartMinutes; late > 0 {
			minutes[id] += late
		}
		if entry.EmployeeName != "" {
			names[id] = entry.EmployeeName
		}
	}

	rows := make([]LatenessRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, LatenessRow{
			EmployeeID:   id,
			EmployeeName: names[id],
			HoursLate:    records.Round2(float64(minutes[id]) / 60),
		})
	}
	return rows
}

// ClockMinutes parses HH:MM or HH:MM:SS into minutes past midnight.
func ClockMinutes(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// HoursWorked is (out - in) in hours, rounded to two places. A clock-out
// earlier than clock-in is read as an overnight shift. Missing or unreadable
// times give 0.
func HoursWorked(clockIn, clockOut string) float64 {
	in, ok := ClockMinutes(clockIn)
	if !ok {
		return 0
	}
	out, ok := ClockMinutes(clockOut)
	if !ok {
		return 0
	}
	diff := out - in
	if diff < 0 {
		diff += 24 * 60
	}
	return records.Round2(float64(diff) / 60)
}

// Summarize computes the dashboard and report counters. Mean salary over no
// employees is 0.
func Summarize(employees []records.Employee, trainingCount int) Summary {
	out := Summary{
		TotalEmployees: len(employees),
		Trainings:      trainingCount,
		ByDepartment:   map[string]int{},
	}
	total := 0.0
	for _, emp := range employees {
		switch records.NormalizeStatus(emp.Status) {
		case records.StatusActive:
			out.Active++
		case records.StatusInactive:
			out.Inactive++
		}
		total += ParseDecimal(emp.Salary)
		dept := strings.TrimSpace(emp.Department)
		if dept == "" {
			dept = "Unassigned"
		}
		out.ByDepartment[dept]++
	}
	if len(employees) > 0 {
		out.AverageSalary = records.Round2(total / float64(len(employees)))
	}
	return out
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseDecimal reads the leading number of value and defaults to 0.
func ParseDecimal(value string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(value))
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}

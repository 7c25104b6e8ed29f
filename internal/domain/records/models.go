package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Collection names double as storage keys.
const (
	Employees             = "employees"
	Candidates            = "candidates"
	Trainings             = "trainings"
	TimeTracking          = "timeTracking"
	Performances          = "performances"
	Vacancies             = "vacancies"
	DisciplinaryProcesses = "disciplinaryProcesses"
	Users                 = "users"
	AuditLog              = "auditLog"
)

// AllCollections lists every collection a full snapshot or reset touches.
var AllCollections = []string{
	Employees,
	Candidates,
	Trainings,
	TimeTracking,
	Performances,
	Vacancies,
	DisciplinaryProcesses,
	Users,
	AuditLog,
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const (
	SeverityLight  = "Light"
	SeverityMedium = "Medium"
	SeverityGrave  = "Grave"
)

const (
	CandidateApplied   = "Applied"
	CandidateInterview = "Interview"
	CandidateApproved  = "Approved"
	CandidateRejected  = "Rejected"
)

// RecordID is always written as a string but accepts legacy numeric ids.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) String() string {
	return string(id)
}

// Decimal is a two-place number that tolerates string encodings such as
// "8.50". NaN and infinities read as zero; JSON has no encoding for them.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*d = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	*d = Decimal(f)
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(Round2(float64(d)), 'f', -1, 64)), nil
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Document struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Data     string `json:"data"`
}

type TimeEntry struct {
	ID           RecordID `json:"id"`
	EmployeeID   RecordID `json:"employeeId"`
	EmployeeName string   `json:"employeeName"`
	Date         string   `json:"date"`
	ClockIn      string   `json:"in"`
	ClockOut     string   `json:"out"`
	Hours        Decimal  `json:"hours"`
	Notes        string   `json:"notes"`
}

type Process struct {
	ID           RecordID   `json:"id"`
	EmployeeID   RecordID   `json:"employeeId"`
	EmployeeName string     `json:"employeeName"`
	Date         string     `json:"date"`
	Title        string     `json:"title"`
	Severity     string     `json:"severity"`
	Description  string     `json:"description"`
	Documents    []Document `json:"documents"`
}

type Employee struct {
	ID          RecordID    `json:"id"`
	Name        string      `json:"name"`
	TaxID       string      `json:"cpf"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Position    string      `json:"position"`
	Salary      string      `json:"salary"`
	Department  string      `json:"dept"`
	HireDate    string      `json:"hire"`
	Status      string      `json:"status"`
	Documents   []Document  `json:"documents"`
	Processes   []Process   `json:"processes"`
	TimeEntries []TimeEntry `json:"timeEntries"`
}

type Candidate struct {
	ID        RecordID   `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Resume    string     `json:"resume"`
	Status    string     `json:"status"`
	Documents []Document `json:"documents"`
}

type Vacancy struct {
	ID           RecordID `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"desc"`
	Requirements string   `json:"req"`
	Closing      string   `json:"closing"`
}

type Performance struct {
	ID           RecordID `json:"id"`
	EmployeeID   RecordID `json:"employeeId"`
	EmployeeName string   `json:"emp"`
	Evaluator    string   `json:"evaluator"`
	Period       string   `json:"period"`
	Score        string   `json:"score"`
	Comments     string   `json:"comments"`
}

// Training enrollment holds employee ids.
type Training struct {
	ID          RecordID `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Type        string   `json:"type"`
	EndDate     string   `json:"end"`
	Enrolled    []string `json:"enrolled"`
}

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
}

// NormalizeStatus maps legacy Portuguese labels onto Active/Inactive.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "ativo":
		return StatusActive
	case "inactive", "inativo":
		return StatusInactive
	default:
		return strings.TrimSpace(status)
	}
}

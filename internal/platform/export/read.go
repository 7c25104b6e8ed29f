package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
)

const maxImportRows = 100000

var (
	ErrNoWorksheet    = errors.New("no worksheet found")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrMissingColumns = errors.New("missing required columns")
)

// ReadRows returns the first worksheet of an .xls or .xlsx upload. The
// format is picked from the file extension.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		rows := workbook.ReadAllCells(maxImportRows)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	}
}

// headerAliases maps normalized header text to the employee field it feeds.
// Portuguese headers from older exports are accepted.
var headerAliases = map[string]string{
	"name":         "name",
	"nome":         "name",
	"cpf":          "cpf",
	"tax id":       "cpf",
	"email":        "email",
	"e-mail":       "email",
	"phone":        "phone",
	"telefone":     "phone",
	"position":     "position",
	"cargo":        "position",
	"salary":       "salary",
	"salario":      "salary",
	"salário":      "salary",
	"department":   "dept",
	"dept":         "dept",
	"departamento": "dept",
	"hire date":    "hire",
	"hire":         "hire",
	"admissao":     "hire",
	"admissão":     "hire",
	"status":       "status",
}

// EmployeeRows maps a sheet with a header row onto employee inputs. Blank
// rows are dropped; validation is left to the caller.
func EmployeeRows(rows [][]string) ([]hr.EmployeeInput, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	cols := map[string]int{}
	for i, header := range rows[0] {
		if field, ok := headerAliases[normalizeHeader(header)]; ok {
			if _, seen := cols[field]; !seen {
				cols[field] = i
			}
		}
	}
	var missing []string
	for _, required := range []string{"name", "cpf"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	get := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}
	out := []hr.EmployeeInput{}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, hr.EmployeeInput{
			Name:       get(row, "name"),
			TaxID:      get(row, "cpf"),
			Email:      get(row, "email"),
			Phone:      get(row, "phone"),
			Position:   get(row, "position"),
			Salary:     get(row, "salary"),
			Department: get(row, "dept"),
			HireDate:   normalizeDate(get(row, "hire")),
			Status:     get(row, "status"),
		})
	}
	return out, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var dateFormats = []string{
	fields.DateLayout,
	"02/01/2006",
	"2/1/2006",
}

// normalizeDate turns Excel serials and day-first dates into YYYY-MM-DD.
// Anything unrecognized is passed through for validation to reject.
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 1 && serial <= 80000 {
		if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return parsed.Format(fields.DateLayout)
		}
	}
	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(fields.DateLayout)
		}
	}
	return value
}

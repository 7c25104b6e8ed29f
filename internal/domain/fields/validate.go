package fields

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hrdesk/internal/domain/taxid"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every failed field of a record. It is returned
// instead of persisting.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Add(field, reason string) {
	e.Issues = append(e.Issues, Issue{Field: field, Reason: reason})
}

// Err returns nil when no issue was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	sort.SliceStable(e.Issues, func(i, j int) bool {
		return e.Issues[i].Field < e.Issues[j].Field
	})
	return e
}

// Checker runs struct-tag validation with the record tags registered:
// taxid, phone, email_shape, date, pastdate and daterange_end.
type Checker struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewChecker(now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	c := &Checker{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}
	c.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(c.validate, "taxid", func(fl validator.FieldLevel) bool {
		return taxid.IsValid(fl.Field().String())
	})
	mustRegister(c.validate, "phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	mustRegister(c.validate, "email_shape", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	mustRegister(c.validate, "date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String(), time.UTC)
		return err == nil
	})
	mustRegister(c.validate, "pastdate", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String(), false, c.now())
	})
	// daterange_end=Start compares against the named sibling field.
	mustRegister(c.validate, "daterange_end", func(fl validator.FieldLevel) bool {
		start := fl.Parent().FieldByName(fl.Param())
		if !start.IsValid() {
			return true
		}
		return ValidDateRange(start.String(), fl.Field().String())
	})
	return c
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates v and converts failures into a *ValidationError.
func (c *Checker) Struct(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), reason(fe))
	}
	return out.Err()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "taxid":
		return "must be a valid tax id"
	case "phone":
		return "must have 10 or 11 digits"
	case "email_shape":
		return "must be a valid email"
	case "date":
		return "must be a valid date in YYYY-MM-DD format"
	case "pastdate":
		return "must be a valid date not in the future"
	case "daterange_end":
		return "must be on or after " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// Package fields holds the shape checks and display normalizers applied to
// raw form values before a record is persisted.
package fields

import (
	"regexp"
	"strings"
	"time"

	"hrdesk/internal/domain/taxid"
)

const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func Digits(value string) string {
	return taxid.Normalize(value)
}

func ValidPhone(value string) bool {
	n := len(Digits(value))
	return n == 10 || n == 11
}

// FormatPhone renders (DD) DDDD-DDDD or (DD) DDDDD-DDDD. Other lengths come
// back stripped.
func FormatPhone(value string) string {
	d := Digits(value)
	switch len(d) {
	case 10:
		return "(" + d[0:2] + ") " + d[2:6] + "-" + d[6:10]
	case 11:
		return "(" + d[0:2] + ") " + d[2:7] + "-" + d[7:11]
	default:
		return d
	}
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return midnight(parsed.In(loc)), nil
	}
	parsed, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

// ValidDate reports whether raw is a calendar date that is not after the day
// containing now, unless allowFuture is set.
func ValidDate(raw string, allowFuture bool, now time.Time) bool {
	day, err := ParseDate(raw, now.Location())
	if err != nil {
		return false
	}
	if allowFuture {
		return true
	}
	return !day.After(midnight(now))
}

// ValidDateRange is true when either bound is blank or end is on or after
// start. An unparseable bound fails the range.
func ValidDateRange(start, end string) bool {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return true
	}
	s, err := ParseDate(start, time.UTC)
	if err != nil {
		return false
	}
	e, err := ParseDate(end, time.UTC)
	if err != nil {
		return false
	}
	return !e.Before(s)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

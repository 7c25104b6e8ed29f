// Package taxid validates and formats 11-digit national tax identifiers
// (CPF) using the two-stage weighted check digit scheme.
package taxid

import "strings"

const Length = 11

// Normalize strips every non-digit character.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func IsValid(raw string) bool {
	digits := Normalize(raw)
	if len(digits) != Length {
		return false
	}
	if allSame(digits) {
		return false
	}
	return checkDigit(digits, 9) == int(digits[9]-'0') &&
		checkDigit(digits, 10) == int(digits[10]-'0')
}

// Format renders 11 digits as DDD.DDD.DDD-DD. Any other length is returned
// stripped but ungrouped.
func Format(raw string) string {
	digits := Normalize(raw)
	if len(digits) != Length {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// checkDigit computes the verifier for position n over digits[0:n] with
// weights n+1 down to 2.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rem := (sum * 10) % 11
	if rem >= 10 {
		return 0
	}
	return rem
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

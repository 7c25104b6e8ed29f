package auth

import (
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyHash is the 32-bit polynomial string hash (h = h*31 + c, wrapped to
// int32, |h| in hex) that older user records were stored with. It is only
// used to verify those records before they are upgraded.
func LegacyHash(s string) string {
	var h int32
	for _, unit := range utf16Units(s) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsLegacyHash reports whether hash predates bcrypt.
func IsLegacyHash(hash string) bool {
	return !strings.HasPrefix(hash, "$2")
}

// VerifyPassword accepts bcrypt and legacy hashes. needsUpgrade is set when
// the match came from a legacy hash.
func VerifyPassword(hash, password string) (ok, needsUpgrade bool) {
	if hash == "" {
		return false, false
	}
	if IsLegacyHash(hash) {
		return LegacyHash(password) == hash, true
	}
	return CheckPassword(hash, password) == nil, false
}

// utf16Units mirrors charCodeAt, so non-BMP runes hash as surrogate pairs.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored credentials.
const PasswordCost = 12

// MinPasswordLength is the shortest password accepted by change-password.
const MinPasswordLength = 8

// PasswordLength counts s in UTF-16 code units, the unit browser clients
// measure passwords in. Characters outside the Basic Multilingual Plane count
// twice.
func PasswordLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// FormatDeliveredOn renders t as "<year> - <month> - <day>" where the month
// is zero-based (January is 0). Existing clients parse this exact shape.
func FormatDeliveredOn(t time.Time) string {
	return fmt.Sprintf("%d - %d - %d", t.Year(), int(t.Month())-1, t.Day())
}

// ParseAmount converts the textual amount of an update-balance request into a
// number. Surrounding whitespace is ignored and a blank value is zero. Decimal
// and exponent forms are accepted, as are unsigned 0x, 0o and 0b integer
// literals. Anything else, including NaN and infinities, is rejected.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if base, digits, ok := integerLiteral(s); ok {
		n, err := strconv.ParseUint(digits, base, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", raw, apperrors.ErrInvalidAmount)
		}
		return float64(n), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", raw, apperrors.ErrInvalidAmount)
	}
	return v, nil
}

func integerLiteral(s string) (base int, digits string, ok bool) {
	if len(s) < 2 || s[0] != '0' {
		return 0, "", false
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}

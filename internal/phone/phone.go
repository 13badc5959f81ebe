// Package phone normalizes Russian phone numbers into a canonical
// 11-digit form. The same policy is applied on the client controller
// and on the server intake path, so validation never disagrees between
// the two sides.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned when a raw value cannot be reduced to an
// 11-digit number with the country prefix.
var ErrInvalid = errors.New("phone: not a valid RU number")

// Number is a successfully normalized phone number.
type Number struct {
	// Digits is the canonical 11-digit string, always starting with 7.
	Digits string
	// E164 is the international form, e.g. +79991234567.
	E164 string
	// Display is the human form, e.g. +7 (999) 123-45-67.
	Display string
}

// Normalize reduces an arbitrary raw string to a canonical RU number.
// Policy, applied in order on the digit-only remainder:
//
//  1. 8XXXXXXXXXX (11 digits)  -> leading 8 swapped to 7
//  2. 9XXXXXXXXX  (10 digits)  -> 7 prepended
//  3. any 10 digits            -> 7 prepended (landlines are accepted)
//  4. truncated to 11 digits
//
// The result must be exactly 11 digits starting with 7.
func Normalize(raw string) (Number, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return Number{}, ErrInvalid
	}

	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	if len(digits) == 10 {
		digits = "7" + digits
	}
	if len(digits) > 11 {
		digits = digits[:11]
	}

	if len(digits) != 11 || digits[0] != '7' {
		return Number{}, ErrInvalid
	}

	return Number{
		Digits:  digits,
		E164:    "+" + digits,
		Display: formatDisplay(digits[1:]),
	}, nil
}

// Valid reports whether raw normalizes successfully.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatDisplay(p string) string {
	return fmt.Sprintf("+7 (%s) %s-%s-%s", p[0:3], p[3:6], p[6:8], p[8:10])
}

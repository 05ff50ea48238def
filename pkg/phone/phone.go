// Package phone normalizes player phone numbers for duplicate detection.
// Numbers arrive from WhatsApp exports and manual entry in mixed formats
// (+91 prefix, leading zero, spaces, dashes), so equality is defined over
// the last ten digits.
package phone

import "strings"

const significantDigits = 10

// Digits strips every non-digit rune from the input.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical form used for comparison: the last ten
// digits of the number, ignoring any country-code prefix.
func Normalize(raw string) string {
	digits := Digits(raw)
	if len(digits) > significantDigits {
		return digits[len(digits)-significantDigits:]
	}
	return digits
}

// Valid reports whether the number carries at least ten digits.
func Valid(raw string) bool {
	return len(Digits(raw)) >= significantDigits
}

// Same reports whether two numbers refer to the same subscriber.
func Same(a, b string) bool {
	na := Normalize(a)
	if na == "" {
		return false
	}
	return na == Normalize(b)
}

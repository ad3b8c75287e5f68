package model

import (
	"regexp"
	"strings"
)

var (
	expirationPattern   = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	securityCodePattern = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// NormalizeCardNumber strips spaces and dashes and checks the result is a
// 12 to 19 digit number that passes the Luhn check.
func NormalizeCardNumber(number string) (string, error) {
	number = strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(number) < 12 || len(number) > 19 {
		return "", &ValidationError{Field: "card_number", Reason: "must be 12 to 19 digits"}
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "card_number", Reason: "must contain only digits"}
		}
	}
	if !luhnValid(number) {
		return "", &ValidationError{Field: "card_number", Reason: "failed checksum"}
	}
	return number, nil
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateExpiration accepts MM/YY.
func ValidateExpiration(exp string) error {
	if !expirationPattern.MatchString(exp) {
		return &ValidationError{Field: "expiration", Reason: "must be MM/YY"}
	}
	return nil
}

// ValidateSecurityCode accepts 3 or 4 digits. The code is checked, never stored.
func ValidateSecurityCode(code string) error {
	if !securityCodePattern.MatchString(code) {
		return &ValidationError{Field: "security_code", Reason: "must be 3 or 4 digits"}
	}
	return nil
}

// MaskCardNumber keeps only the last four digits of a card number.
func MaskCardNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if number == "" {
		return ""
	}
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

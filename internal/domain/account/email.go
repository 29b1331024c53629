package account

import (
	"regexp"
	"strings"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases email and checks its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("Email is required")
	}
	if len(email) > maxEmailLength {
		return "", invalid("Email is too long")
	}
	if !emailPattern.MatchString(email) {
		return "", invalid("Email format is invalid")
	}
	return email, nil
}

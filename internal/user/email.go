package user

import (
	"fmt"
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lower-cases s and rejects anything that is not a bare address.
func NormalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", fmt.Errorf("invalid email address %q", s)
	}
	return email, nil
}

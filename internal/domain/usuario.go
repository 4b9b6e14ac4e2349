package domain

import "regexp"

// Usuario represents a library member who can borrow books.
type Usuario struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// emailPattern accepts local@domain where the domain has at least one dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidarEmail reports whether the email matches the expected basic format.
func ValidarEmail(email string) bool {
	return emailPattern.MatchString(email)
}

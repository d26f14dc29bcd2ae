package auth

import (
	"regexp"
	"strings"
	"unicode"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/config"

	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(password, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return apperr.Validation("invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < config.MinPasswordLength {
		return apperr.Validation("password must be at least %d characters long", config.MinPasswordLength)
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return apperr.Validation("password must be at most 72 bytes long")
	}
	return nil
}

// NormalizeFullName trims name and rejects blank names and names with control
// characters. Names end up in email headers.
func NormalizeFullName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("full name is required")
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return "", apperr.Validation("full name must not contain control characters")
	}
	return name, nil
}

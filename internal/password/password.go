// Package password provides one-way password hashing and strength validation.
package password

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dErrors "aegis/pkg/domain-errors"
)

// Strength rules. Requirements derives its description from these same
// constants so the displayed rules can never drift from the enforced ones.
const (
	minLength    = 8
	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Service hashes and verifies passwords with bcrypt.
type Service struct {
	cost   int
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCost overrides the bcrypt cost, mainly to speed up tests.
func WithCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// WithLogger sets the logger used for internal comparison failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a password Service with bcrypt's default cost.
func New(opts ...Option) *Service {
	s := &Service{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hash creates a salted bcrypt hash of the plaintext password.
func (s *Service) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		// bcrypt rejects inputs over 72 bytes; anything else is a crypto fault.
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "could not hash password")
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored bcrypt hash. Comparison and
// format errors are logged and reported as a mismatch, never raised: password
// checks are a boolean gate, not an exceptional path.
func (s *Service) Verify(plain, hashed string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		if s.logger != nil && err != bcrypt.ErrMismatchedHashAndPassword {
			s.logger.Warn("password comparison failed", "error", err)
		}
		return false
	}
	return true
}

// ValidateStrength reports whether the password satisfies the strength rules:
// minimum length plus at least one uppercase letter, lowercase letter, digit,
// and special character.
func (s *Service) ValidateStrength(pw string) bool {
	if len(pw) < minLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Requirements describes the strength rules for client-side display.
type Requirements struct {
	MinLength        int    `json:"min_length"`
	RequireUppercase bool   `json:"require_uppercase"`
	RequireLowercase bool   `json:"require_lowercase"`
	RequireDigit     bool   `json:"require_digit"`
	RequireSpecial   bool   `json:"require_special"`
	SpecialChars     string `json:"special_chars"`
}

// Requirements returns the rule list ValidateStrength enforces.
func (s *Service) Requirements() Requirements {
	return Requirements{
		MinLength:        minLength,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSpecial:   true,
		SpecialChars:     specialChars,
	}
}

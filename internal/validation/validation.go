// Package validation holds the pure input sanitization and request
// validation rules for the API. Sanitization strips and limits free text;
// validation checks shape and requiredness. Both are side-effect free.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
)

// MaxSanitizedLength bounds any sanitized free-text input.
const MaxSanitizedLength = 500

// DefaultMaxFoodInputLength is the food description limit when no
// configured value is supplied.
const DefaultMaxFoodInputLength = 500

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// SanitizeInput normalizes free-text input: trims whitespace, strips
// angle brackets and ASCII control characters, and truncates to
// MaxSanitizedLength. Non-string input yields "". Always returns a
// string, never panics.
func SanitizeInput(input any) string {
	s, ok := input.(string)
	if !ok {
		return ""
	}

	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '<' || r == '>' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	if utf8.RuneCountInString(s) > MaxSanitizedLength {
		s = string([]rune(s)[:MaxSanitizedLength])
	}
	return s
}

// ValidateNutritionRequest checks the food field of an analyze request.
// It returns the trimmed food text on success. maxLen <= 0 falls back to
// DefaultMaxFoodInputLength.
func ValidateNutritionRequest(food any, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxFoodInputLength
	}

	if food == nil {
		return "", apperr.NewValidation("Food input is required")
	}

	s, ok := food.(string)
	if !ok {
		return "", apperr.NewValidation("Food input must be a string")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.NewValidation("Food input is required")
	}

	if len(s) > maxLen {
		return "", apperr.NewValidation(
			fmt.Sprintf("Food input length must be at most %d characters", maxLen))
	}

	return s, nil
}

// ValidateRegistration checks the account registration fields: username
// 3-50 chars of [a-zA-Z0-9_], password present, nickname 1-100 chars
// after trimming. Returns the trimmed nickname.
func ValidateRegistration(username, password, nickname string) (string, error) {
	if username == "" || password == "" || nickname == "" {
		return "", apperr.NewValidation("Username, password and nickname are required")
	}

	if !usernameRe.MatchString(username) {
		return "", apperr.NewValidation(
			"Username must be 3-50 characters of letters, numbers and underscores")
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len(nickname) > 100 {
		return "", apperr.NewValidation("Nickname must be 1-100 characters")
	}

	return nickname, nil
}

// ValidateSearchEntry checks a search-history add request: all fields
// present, query at most 500 chars, summary at most 1000 chars.
func ValidateSearchEntry(searchID, query, summary string) error {
	if searchID == "" || query == "" || summary == "" {
		return apperr.NewValidation("searchId, query and summary are required")
	}
	if len(query) > 500 {
		return apperr.NewValidation("Query length must be at most 500 characters")
	}
	if len(summary) > 1000 {
		return apperr.NewValidation("Summary length must be at most 1000 characters")
	}
	return nil
}

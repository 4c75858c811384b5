package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "plain_text", input: "chicken salad", expected: "chicken salad"},
		{name: "trims_whitespace", input: "  two eggs  ", expected: "two eggs"},
		{name: "strips_angle_brackets", input: "<script>rice</script>", expected: "scriptrice/script"},
		{name: "strips_control_chars", input: "pasta\x00\x1f\x7fbake", expected: "pastabake"},
		{name: "nil_input", input: nil, expected: ""},
		{name: "number_input", input: 42, expected: ""},
		{name: "bool_input", input: true, expected: ""},
		{name: "slice_input", input: []string{"soup"}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeInput(tt.input))
		})
	}
}

func TestSanitizeInput_Truncates(t *testing.T) {
	long := strings.Repeat("a", 2*MaxSanitizedLength)
	out := SanitizeInput(long)
	assert.Equal(t, MaxSanitizedLength, utf8.RuneCountInString(out))
}

func TestSanitizeInput_Idempotent(t *testing.T) {
	inputs := []string{
		"  plain  ",
		"<b>bold</b> move",
		strings.Repeat("x", 700),
		"tab\tand\nnewline",
	}
	for _, in := range inputs {
		once := SanitizeInput(in)
		assert.Equal(t, once, SanitizeInput(once))
	}
}

func TestSanitizeInput_NeverContainsBrackets(t *testing.T) {
	out := SanitizeInput("<<deep>> <nested <tags>>")
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
}

func TestValidateNutritionRequest(t *testing.T) {
	t.Run("valid_food", func(t *testing.T) {
		food, err := ValidateNutritionRequest("apple pie", 500)
		require.NoError(t, err)
		assert.Equal(t, "apple pie", food)
	})

	t.Run("trims_value", func(t *testing.T) {
		food, err := ValidateNutritionRequest("  toast  ", 500)
		require.NoError(t, err)
		assert.Equal(t, "toast", food)
	})

	t.Run("missing_food", func(t *testing.T) {
		_, err := ValidateNutritionRequest(nil, 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("empty_after_trim", func(t *testing.T) {
		_, err := ValidateNutritionRequest("   ", 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("non_string", func(t *testing.T) {
		_, err := ValidateNutritionRequest(12.5, 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "string")
	})

	t.Run("too_long", func(t *testing.T) {
		_, err := ValidateNutritionRequest(strings.Repeat("a", 1001), 500)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "length")
	})

	t.Run("default_max_length", func(t *testing.T) {
		_, err := ValidateNutritionRequest(strings.Repeat("a", 501), 0)
		require.Error(t, err)
	})
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		nickname string
		wantErr  string
	}{
		{name: "valid", username: "test_user1", password: "password123", nickname: "Test User"},
		{name: "missing_username", password: "p", nickname: "n", wantErr: "required"},
		{name: "missing_password", username: "user", nickname: "n", wantErr: "required"},
		{name: "missing_nickname", username: "user", password: "p", wantErr: "required"},
		{name: "username_too_short", username: "ab", password: "p", nickname: "n", wantErr: "Username"},
		{name: "username_bad_chars", username: "bad name!", password: "p", nickname: "n", wantErr: "Username"},
		{name: "nickname_too_long", username: "user", password: "p", nickname: strings.Repeat("n", 101), wantErr: "Nickname"},
		{name: "nickname_blank", username: "user", password: "p", nickname: "   ", wantErr: "Nickname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nickname, err := ValidateRegistration(tt.username, tt.password, tt.nickname)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.nickname), nickname)
		})
	}
}

func TestValidateSearchEntry(t *testing.T) {
	assert.NoError(t, ValidateSearchEntry("s1", "apple", "95 kcal"))
	assert.Error(t, ValidateSearchEntry("", "apple", "95 kcal"))
	assert.Error(t, ValidateSearchEntry("s1", strings.Repeat("q", 501), "sum"))
	assert.Error(t, ValidateSearchEntry("s1", "q", strings.Repeat("s", 1001)))
}

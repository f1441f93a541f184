package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("author@example.org"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))

	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("no-at-sign"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail("spaces in@example.org"))
}

func TestValidatePassword(t *testing.T) {
	ok, _ := ValidatePassword("secure1pass")
	assert.True(t, ok)

	ok, msg := ValidatePassword("short1")
	assert.False(t, ok)
	assert.Equal(t, "Password must be at least 8 characters", msg)

	ok, msg = ValidatePassword("lettersonly")
	assert.False(t, ok)
	assert.Equal(t, "Password must contain at least one letter and one digit", msg)

	ok, _ = ValidatePassword("12345678")
	assert.False(t, ok)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}

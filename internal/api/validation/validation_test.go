package validation_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/api/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, validation.IsValidEmail("user@example.com"))
	assert.True(t, validation.IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, validation.IsValidEmail("not-an-email"))
	assert.False(t, validation.IsValidEmail("@example.com"))
	assert.False(t, validation.IsValidEmail("user@"))
	assert.False(t, validation.IsValidEmail(strings.Repeat("a", 250)+"@x.com"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, validation.IsValidUUID(uuid.New().String()))
	assert.False(t, validation.IsValidUUID("not-a-uuid"))
	assert.False(t, validation.IsValidUUID(""))
}

func TestIsValidPassword(t *testing.T) {
	ok, _ := validation.IsValidPassword("longenough")
	assert.True(t, ok)

	ok, msg := validation.IsValidPassword("short")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)

	ok, _ = validation.IsValidPassword(strings.Repeat("x", 129))
	assert.False(t, ok)
}

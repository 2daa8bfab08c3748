package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@uni.edu.tr"))
	assert.True(t, IsValidEmail("Ada.Lovelace@Uni.EDU"))
	assert.False(t, IsValidEmail("ada@"))
	assert.False(t, IsValidEmail("no-at-sign.edu"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidSlug(t *testing.T) {
	for _, ok := range []string{"robotics", "game-dev", "ieee-2026"} {
		assert.True(t, IsValidSlug(ok), ok)
	}
	for _, bad := range []string{"", "Robotics", "game--dev", "-chess", "chess-", "a b"} {
		assert.False(t, IsValidSlug(bad), bad)
	}
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Şule Yılmaz"))
	assert.True(t, IsValidName("  Al  "))
	assert.False(t, IsValidName("A"))
	assert.False(t, IsValidName("   "))
}

func TestOptionalStringValidation(t *testing.T) {
	assert.True(t, NewStringValidation("").WithRequired(false).WithMinLength(3).Validate())
	assert.False(t, NewStringValidation("ab").WithRequired(false).WithMinLength(3).Validate())
}

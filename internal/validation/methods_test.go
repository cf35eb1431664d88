package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	t.Run("valid when no errors added", func(t *testing.T) {
		v := New()
		assert.True(t, v.Valid())
	})

	t.Run("check records message on failure only", func(t *testing.T) {
		v := New()
		v.Check(true, "ok", "should not appear")
		v.Check(false, "bad", "is wrong")
		assert.False(t, v.Valid())
		assert.Equal(t, "is wrong", v.Errors["bad"])
		assert.NotContains(t, v.Errors, "ok")
	})

	t.Run("required rejects blank strings", func(t *testing.T) {
		v := New()
		v.Required("name", "   ")
		assert.Contains(t, v.Errors, "name")
	})
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ops@firstbank.ng", true},
		{"a.b+tag@example.co.uk", true},
		{"not-an-email", false},
		{"@missing.local", false},
		{"user@", false},
	}

	for _, tt := range tests {
		v := New()
		v.Email("email", tt.email)
		assert.Equal(t, tt.valid, v.Valid(), "email %q", tt.email)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+2348012345678", true},
		{"08012345678", true},
		{"12345", false},
		{"phone", false},
	}

	for _, tt := range tests {
		v := New()
		v.Phone("phone", tt.phone)
		assert.Equal(t, tt.valid, v.Valid(), "phone %q", tt.phone)
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"strong", "Str0ng!Pass", true},
		{"too short", "S1!a", false},
		{"no uppercase", "weak!pass1", false},
		{"no digit", "Weak!Password", false},
		{"no special", "Weak1Password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Password("password", tt.password)
			assert.Equal(t, tt.valid, v.Valid())
		})
	}
}

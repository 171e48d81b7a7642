package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestService_HashAndVerify(t *testing.T) {
	svc := New(WithCost(bcrypt.MinCost))

	hashed, err := svc.Hash("Valid123!")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, "Valid123!", hashed)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, svc.Verify("Valid123!", hashed))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		assert.False(t, svc.Verify("Wrong123!", hashed))
	})

	t.Run("garbage hash fails instead of erroring", func(t *testing.T) {
		assert.False(t, svc.Verify("Valid123!", "not-a-bcrypt-hash"))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		other, err := svc.Hash("Valid123!")
		require.NoError(t, err)
		assert.NotEqual(t, hashed, other)
	})
}

func TestService_ValidateStrength(t *testing.T) {
	svc := New()

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"too short", "short1!", false},
		{"missing uppercase", "nouppercase1!", false},
		{"missing digit", "NoDigits!!", false},
		{"missing special", "NoSpecial123", false},
		{"all rules satisfied", "Valid123!", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ValidateStrength(tt.password))
		})
	}
}

func TestService_Requirements(t *testing.T) {
	req := New().Requirements()

	assert.Equal(t, minLength, req.MinLength)
	assert.True(t, req.RequireUppercase)
	assert.True(t, req.RequireLowercase)
	assert.True(t, req.RequireDigit)
	assert.True(t, req.RequireSpecial)
	assert.Equal(t, specialChars, req.SpecialChars)
}

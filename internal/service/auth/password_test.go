package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermoledger/thermoledger/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialChecker(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	checker := NewCredentialChecker([]config.ValidatorCredential{
		{ID: "validator-1", SecretHash: string(hash)},
	}, NewBcryptVerifier())

	t.Run("accepts a correct secret", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, checker.Check("validator-1", "correct-secret"))
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		t.Parallel()
		err := checker.Check("validator-1", "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects an unknown validator", func(t *testing.T) {
		t.Parallel()
		err := checker.Check("validator-99", "correct-secret")
		assert.ErrorIs(t, err, ErrUnknownValidator)
	})
}

package auth

import (
	"github.com/thermoledger/thermoledger/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier defines the interface for verifying validator shared
// secrets against their stored hashes.
type SecretVerifier interface {
	// Compare compares a hashed secret with its possible plaintext
	// equivalent. Returns nil on success, or an error on failure.
	Compare(hashedSecret, secret string) error
}

// BcryptVerifier implements SecretVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the SecretVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedSecret, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}

// CredentialChecker verifies validator credentials against the configured
// identity list.
type CredentialChecker struct {
	hashes   map[string]string
	verifier SecretVerifier
}

// NewCredentialChecker indexes the configured validator credentials.
func NewCredentialChecker(creds []config.ValidatorCredential, verifier SecretVerifier) *CredentialChecker {
	hashes := make(map[string]string, len(creds))
	for _, c := range creds {
		hashes[c.ID] = c.SecretHash
	}
	return &CredentialChecker{hashes: hashes, verifier: verifier}
}

// Check verifies the validator's shared secret. Returns ErrUnknownValidator
// for unconfigured IDs and ErrInvalidCredentials on a mismatch.
func (c *CredentialChecker) Check(validatorID, secret string) error {
	hash, ok := c.hashes[validatorID]
	if !ok {
		return ErrUnknownValidator
	}
	if err := c.verifier.Compare(hash, secret); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

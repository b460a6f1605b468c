// Package auth implements validator-identity authentication: shared-secret
// verification against configured bcrypt hashes and HMAC-signed JWT access
// tokens naming the validator on subsequent requests.
package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates a token that is malformed, carries a bad
	// signature, or otherwise failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a token whose expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid indicates a token used before its issue time.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType indicates a token whose type claim is not "access".
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrUnknownValidator indicates a credential request for a validator ID
	// that is not configured.
	ErrUnknownValidator = errors.New("unknown validator")

	// ErrInvalidCredentials indicates a shared secret that does not match the
	// configured hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

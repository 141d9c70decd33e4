package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCredentialStore means the credential lookup itself failed.
	ErrCredentialStore = errors.New("credential store unavailable")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed, tampered, wrongly signed or
	// wrong-algorithm tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrIncompleteClaims is returned for a verified token that lacks a
	// username or expiry.
	ErrIncompleteClaims = errors.New("incomplete token claims")
)

package services

import "errors"

var (
	// ErrTokenNotFound means an access token matched no fines at all.
	ErrTokenNotFound = errors.New("no fines found for this token")

	// ErrNothingToSettle means the token is known but every fine under it is
	// already paid, including the case where a concurrent settlement got
	// there first.
	ErrNothingToSettle = errors.New("no unpaid fines to settle")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

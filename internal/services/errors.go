package services

import "errors"

// Service-level error taxonomy. Handlers map these to HTTP status codes with
// errors.Is; transport-level failures from the store or the gateway never
// leak past this package untranslated.
var (
	ErrValidation = errors.New("invalid input")

	// ErrDuplicateAccount: the email already has a record in any sub-state.
	// Recoverable; the caller should sign in instead of re-registering.
	ErrDuplicateAccount = errors.New("account already exists for this email")

	// ErrPaymentArtifact: the gateway failed before anything was persisted.
	// Recoverable; retry is safe.
	ErrPaymentArtifact = errors.New("payment gateway request failed")

	// ErrPersistence: the store write failed after a payment artifact was
	// already created. The artifact is orphaned and logged for manual
	// reconciliation; it is not cancelled with the gateway.
	ErrPersistence = errors.New("failed to persist account")

	// ErrStoreUnavailable: a store operation failed before any payment
	// artifact existed. Nothing was created anywhere; retry is safe.
	ErrStoreUnavailable = errors.New("account store unavailable")

	// ErrInvalidOtp covers wrong and expired codes alike; the two are never
	// distinguished to the caller.
	ErrInvalidOtp = errors.New("invalid or expired code")

	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountNotActive: login on a pending/deactivated account. Surfaced
	// distinctly from not-found so unpaid users are told to complete payment
	// rather than re-register.
	ErrAccountNotActive = errors.New("account not active")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRateLimited = errors.New("too many requests")
)

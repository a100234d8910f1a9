package client

import (
	"fmt"
)

// AuthError reports rejected credentials or a malformed login response.
// It surfaces as a single banner message, not per-field errors.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RegistrationError reports a backend rejection of an otherwise valid
// registration payload, e.g. a duplicate email.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string { return e.Message }

// TokenizationError reports a card widget failure. The payment step is not
// advanced and no charge was attempted.
type TokenizationError struct {
	Status string
	Err    error
}

func (e *TokenizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card tokenization failed (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("card tokenization failed (%s)", e.Status)
}

func (e *TokenizationError) Unwrap() error { return e.Err }

// PaymentError reports a backend charge rejection after successful
// tokenization. The payment step is not advanced.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string { return e.Message }

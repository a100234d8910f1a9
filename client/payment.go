package client

import (
	"context"

	"github.com/fastbreakhq/fastbreak/core/payment"
)

// TokenResult is what the card widget yields on success: a single-use charge
// token plus a non-sensitive card summary. Raw card numbers never reach this
// package.
type TokenResult struct {
	Token string
	Card  payment.CardSummary
}

// Tokenizer wraps the external card-entry widget behind a single call.
// Implementations report widget failures as *TokenizationError.
type Tokenizer interface {
	Tokenize(ctx context.Context) (TokenResult, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(ctx context.Context) (TokenResult, error)

func (f TokenizerFunc) Tokenize(ctx context.Context) (TokenResult, error) { return f(ctx) }

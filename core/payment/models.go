package payment

import (
	"time"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/season"
)

// Package pricing tiers: sessions per week for the camp season.
// Prices are per player, in cents.
const (
	PackageThreePerWeek = "1" // $795
	PackageFourPerWeek  = "2" // $835
	PackageFivePerWeek  = "3" // $875
)

var packagePrices = map[string]int{
	PackageThreePerWeek: 79500,
	PackageFourPerWeek:  83500,
	PackageFivePerWeek:  87500,
}

// PriceCents returns the per-player price of a package in cents.
func PriceCents(packageType string) (int, bool) {
	price, ok := packagePrices[packageType]
	return price, ok
}

// TotalCents returns the charge amount for n players on a package.
func TotalCents(packageType string, nPlayers int) (int, bool) {
	price, ok := PriceCents(packageType)
	if !ok || nPlayers < 1 {
		return 0, false
	}
	return price * nPlayers, true
}

// CardSummary is the non-sensitive card metadata the tokenization widget
// reports alongside a token. Raw card numbers never reach this code.
type CardSummary struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
}

// Record is a completed charge. The processor's payment id is the sole
// source of truth for "payment succeeded".
type Record struct {
	ID          string        `json:"id"`
	GuardianID  string        `json:"guardianId"`
	PlayerIDs   []string      `json:"playerIds"`
	Season      season.Season `json:"season"`
	Year        int           `json:"year"`
	PackageType string        `json:"packageType"`
	AmountCents int           `json:"amount"` // cents
	BuyerEmail  string        `json:"buyerEmail"`
	Card        CardSummary   `json:"card"`
	ProcessorID string        `json:"paymentId"`
	ReceiptURL  string        `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"` // UTC
}

// CapturePayment contains a tokenized charge request from the payment step.
type CapturePayment struct {
	SourceID    string        `json:"sourceId" validate:"required"`
	GuardianID  string        `json:"parentId" validate:"required"`
	PlayerIDs   []string      `json:"playerIds" validate:"required,min=1"`
	PackageType string        `json:"packageType" validate:"required,oneof=1 2 3"`
	BuyerEmail  string        `json:"buyerEmailAddress" validate:"required,email"`
	Season      season.Season `json:"season"`
	Year        int           `json:"year"`
	Card        CardSummary   `json:"cardDetails"`
}

// Validate cleans the input and accumulates all violations. The charge
// amount is always recomputed server-side from the package and player count.
func (cp *CapturePayment) Validate() error {
	cp.BuyerEmail = core.CleanString(cp.BuyerEmail, true /* lower */)

	flds := core.FieldErrors(cp)
	if cp.Season != "" && !cp.Season.Valid() {
		flds = append(flds, core.FieldError{Field: "season", Error: "unknown season"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}

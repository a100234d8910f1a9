// Package paymentsvc implements the card processor against the Square
// Payments API. Card data never transits here; the browser widget trades it
// for a single-use source token which this service submits for capture.
package paymentsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/payment"
)

const squareVersion = "2024-01-18"

type squareProcessor struct {
	conf   *core.Config
	client *http.Client
	logger core.Logger
}

var _ payment.CardProcessor = (*squareProcessor)(nil)

func NewSquareProcessor(conf *core.Config, logger core.Logger) *squareProcessor {
	return &squareProcessor{
		conf:   conf,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type (
	money struct {
		Amount   int    `json:"amount"`
		Currency string `json:"currency"`
	}

	createPaymentRequest struct {
		SourceID       string `json:"source_id"`
		IdempotencyKey string `json:"idempotency_key"`
		AmountMoney    money  `json:"amount_money"`
		LocationID     string `json:"location_id,omitempty"`
		BuyerEmail     string `json:"buyer_email_address,omitempty"`
		ReferenceID    string `json:"reference_id,omitempty"`
		Note           string `json:"note,omitempty"`
	}

	squarePayment struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		ReceiptURL string `json:"receipt_url"`
	}

	squareError struct {
		Category string `json:"category"`
		Code     string `json:"code"`
		Detail   string `json:"detail"`
	}

	createPaymentResponse struct {
		Payment squarePayment `json:"payment"`
		Errors  []squareError `json:"errors"`
	}
)

func (p *squareProcessor) Charge(ctx context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	body := createPaymentRequest{
		SourceID:       req.SourceID,
		IdempotencyKey: uuid.NewString(),
		AmountMoney:    money{Amount: req.AmountCents, Currency: currency},
		LocationID:     p.conf.Square.LocationID,
		BuyerEmail:     req.BuyerEmail,
		ReferenceID:    req.ReferenceID,
		Note:           req.Note,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return payment.ChargeResult{}, errors.Wrap(err, "encoding charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.conf.Square.BaseURL+"/v2/payments", bytes.NewReader(payload))
	if err != nil {
		return payment.ChargeResult{}, errors.Wrap(err, "building charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.conf.Square.AccessToken)
	httpReq.Header.Set("Square-Version", squareVersion)

	res, err := p.client.Do(httpReq)
	if err != nil {
		return payment.ChargeResult{}, errors.Wrap(err, "submitting charge")
	}
	defer func() { _ = res.Body.Close() }()

	var out createPaymentResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return payment.ChargeResult{}, errors.Wrap(err, "decoding charge response")
	}

	if res.StatusCode >= http.StatusBadRequest || len(out.Errors) > 0 {
		detail := "charge rejected"
		if len(out.Errors) > 0 {
			detail = fmt.Sprintf("%s: %s", out.Errors[0].Code, out.Errors[0].Detail)
		}
		p.logger.Warn(fmt.Sprintf("square charge failed - status: %d - %s", res.StatusCode, detail))
		return payment.ChargeResult{}, errors.New(detail)
	}
	if out.Payment.Status != "COMPLETED" && out.Payment.Status != "APPROVED" {
		return payment.ChargeResult{}, errors.Errorf("charge not completed: %s", out.Payment.Status)
	}

	return payment.ChargeResult{
		PaymentID:  out.Payment.ID,
		ReceiptURL: out.Payment.ReceiptURL,
	}, nil
}

package paymentsvc

import (
	"context"
	"sync"

	"github.com/fastbreakhq/fastbreak/core/payment"
)

// DummyProcessor approves every charge and records requests for inspection.
type DummyProcessor struct {
	Err      error // returned instead of a result when set
	Requests []payment.ChargeRequest
	mutex    sync.Mutex
}

var _ payment.CardProcessor = (*DummyProcessor)(nil)

func NewDummyProcessor() *DummyProcessor {
	return &DummyProcessor{}
}

func (p *DummyProcessor) Charge(_ context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.Err != nil {
		return payment.ChargeResult{}, p.Err
	}
	p.Requests = append(p.Requests, req)
	return payment.ChargeResult{
		PaymentID:  "dummy-" + req.ReferenceID,
		ReceiptURL: "https://squareup.example/receipts/" + req.ReferenceID,
	}, nil
}

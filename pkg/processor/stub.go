package processor

import (
	"context"
	"fmt"
	"time"
)

// StubProvider is a no-op provider for development; money never moves and
// every submission is accepted as PENDING.
type StubProvider struct{}

func (s *StubProvider) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	return &Invoice{
		ID:         fmt.Sprintf("stub-inv-%d", time.Now().UnixNano()),
		ExternalID: req.ExternalID,
		Status:     "PENDING",
		ExpiresAt:  time.Now().Add(30 * time.Minute),
	}, nil
}

func (s *StubProvider) CreateDisbursement(ctx context.Context, req DisbursementRequest) (*Disbursement, error) {
	return &Disbursement{
		ID:         fmt.Sprintf("stub-dis-%d", time.Now().UnixNano()),
		ExternalID: req.ExternalID,
		Status:     "PENDING",
	}, nil
}

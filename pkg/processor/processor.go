// Package processor is the client for the external payment/payout provider.
// The provider executes actual money movement and reports results back
// asynchronously through webhooks; this package only submits work.
package processor

import (
	"context"
	"time"
)

type InvoiceRequest struct {
	ExternalID  string
	AmountCents int64
	Currency    string
	Description string
	PayerEmail  string
	CallbackURL string
}

type Invoice struct {
	ID         string
	ExternalID string
	Status     string
	InvoiceURL string
	ExpiresAt  time.Time
}

type DisbursementRequest struct {
	ExternalID    string
	AmountCents   int64 // net amount the worker receives
	Currency      string
	BankCode      string
	AccountNumber string
	HolderName    string
	Description   string
	CallbackURL   string
}

type Disbursement struct {
	ID         string
	ExternalID string
	Status     string
}

type Provider interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	CreateDisbursement(ctx context.Context, req DisbursementRequest) (*Disbursement, error)
}

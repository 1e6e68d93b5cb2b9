package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the processor's REST API with API-key basic auth.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type invoiceReq struct {
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	PayerEmail  string `json:"payer_email,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type invoiceResp struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}

func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	payload := invoiceReq{
		ExternalID:  req.ExternalID,
		Amount:      req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		PayerEmail:  req.PayerEmail,
		CallbackURL: req.CallbackURL,
	}
	var out invoiceResp
	if err := c.post(ctx, "/v2/invoices", payload, &out); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	inv := &Invoice{
		ID:         out.ID,
		ExternalID: out.ExternalID,
		Status:     out.Status,
		InvoiceURL: out.InvoiceURL,
	}
	if t, err := time.Parse(time.RFC3339, out.ExpiryDate); err == nil {
		inv.ExpiresAt = t
	}
	return inv, nil
}

type disbursementReq struct {
	ExternalID    string `json:"external_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_holder_number"`
	HolderName    string `json:"account_holder_name"`
	Description   string `json:"description"`
	CallbackURL   string `json:"callback_url,omitempty"`
}

type disbursementResp struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

func (c *Client) CreateDisbursement(ctx context.Context, req DisbursementRequest) (*Disbursement, error) {
	payload := disbursementReq{
		ExternalID:    req.ExternalID,
		Amount:        req.AmountCents,
		Currency:      req.Currency,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		HolderName:    req.HolderName,
		Description:   req.Description,
		CallbackURL:   req.CallbackURL,
	}
	var out disbursementResp
	if err := c.post(ctx, "/v1/disbursements", payload, &out); err != nil {
		return nil, fmt.Errorf("create disbursement: %w", err)
	}
	return &Disbursement{ID: out.ID, ExternalID: out.ExternalID, Status: out.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.APIKey, "")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("processor returned %d: %s", resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiftly/config"
	"shiftly/internal/domain"
	"shiftly/internal/ledger"
	"shiftly/internal/ledger/ledgertest"
	"shiftly/internal/models"
	"shiftly/internal/service"
	"shiftly/pkg/processor"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const callbackToken = "secret-token"

type paymentStoreStub struct {
	tx *models.PaymentTransaction
	w  *ledgertest.Writer
}

func (s *paymentStoreStub) Create(ctx context.Context, p *models.PaymentTransaction) error { return nil }
func (s *paymentStoreStub) GetByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *paymentStoreStub) GetByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error) {
	if s.tx == nil || s.tx.ExternalID != externalID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.tx
	if st := s.w.Status("payment_transactions", cp.ID); st != "" {
		cp.Status = st
	}
	return &cp, nil
}
func (s *paymentStoreStub) SetProviderPaymentID(ctx context.Context, id uint, providerID string) error {
	return nil
}
func (s *paymentStoreStub) ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

type payoutStoreStub struct {
	p *models.PayoutRequest
	w *ledgertest.Writer
}

func (s *payoutStoreStub) GetByID(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *payoutStoreStub) GetByExternalID(ctx context.Context, externalID string) (*models.PayoutRequest, error) {
	if s.p == nil || s.p.ExternalID != externalID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.p
	if st := s.w.Status("payout_requests", cp.ID); st != "" {
		cp.Status = st
	}
	return &cp, nil
}
func (s *payoutStoreStub) SetProviderPayoutID(ctx context.Context, id uint, providerID string) error {
	return nil
}
func (s *payoutStoreStub) ListByWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.PayoutRequest, error) {
	return nil, nil
}
func (s *payoutStoreStub) CountChargeableSince(ctx context.Context, workerID uint, since time.Time) (int64, error) {
	return 0, nil
}

type walletStoreStub struct {
	wallet *models.Wallet
}

func (s *walletStoreStub) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	return s.wallet, nil
}
func (s *walletStoreStub) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.wallet, nil
}
func (s *walletStoreStub) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.wallet, nil
}

type bankStoreStub struct{}

func (bankStoreStub) Create(ctx context.Context, a *models.BankAccount) error { return nil }
func (bankStoreStub) GetByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	return nil, gorm.ErrRecordNotFound
}
func (bankStoreStub) ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	return nil, nil
}

type webhookFixture struct {
	router *gin.Engine
	writer *ledgertest.Writer
	wallet *models.Wallet
	tx     *models.PaymentTransaction
	payout *models.PayoutRequest
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Processor.CallbackToken = callbackToken
	log := zap.NewNop()

	writer := ledgertest.New()
	wallet := &models.Wallet{ID: 10, UserID: 1, AvailableCents: 8000000, Currency: "IDR", IsActive: true}
	writer.SeedWallet(*wallet)

	tx := &models.PaymentTransaction{
		ID: 1, BusinessID: 1, WalletID: wallet.ID, AmountCents: 2000000,
		Status: domain.PaymentStatusPending, ExternalID: "top-abc",
	}
	writer.SetStatus("payment_transactions", tx.ID, tx.Status)
	payout := &models.PayoutRequest{
		ID: 2, WorkerID: 1, WalletID: wallet.ID, AmountCents: 6000000, NetCents: 6000000,
		Status: domain.PayoutStatusPending, ExternalID: "out-def", RequestedAt: time.Now(),
	}
	writer.SetStatus("payout_requests", payout.ID, payout.Status)

	paymentSvc := service.NewPaymentService(cfg, log, writer,
		&paymentStoreStub{tx: tx, w: writer}, &walletStoreStub{wallet: wallet}, &processor.StubProvider{})
	payoutSvc := service.NewPayoutService(cfg, log, writer,
		&payoutStoreStub{p: payout, w: writer}, &walletStoreStub{wallet: wallet}, bankStoreStub{}, &processor.StubProvider{})

	h := NewWebhookHandler(cfg, log, paymentSvc, payoutSvc)
	r := gin.New()
	r.POST("/webhooks/payment", h.HandlePayment)
	r.POST("/webhooks/payout", h.HandlePayout)
	return &webhookFixture{router: r, writer: writer, wallet: wallet, tx: tx, payout: payout}
}

// debit mirrors the optimistic gross debit the payout request applied.
func (f *webhookFixture) debit() ledger.Request {
	return ledger.Request{Ops: []ledger.Operation{{
		WalletID:   f.wallet.ID,
		Bucket:     domain.BucketAvailable,
		DeltaCents: -f.payout.AmountCents,
		Kind:       domain.EntryKindPayout,
		Reference:  f.payout.ExternalID,
	}}}
}

func (f *webhookFixture) post(t *testing.T, path, token string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Callback-Token", token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsBadToken(t *testing.T) {
	f := newWebhookFixture(t)
	rec := f.post(t, "/webhooks/payment", "wrong", map[string]interface{}{
		"external_id": "top-abc", "status": "COMPLETED",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.post(t, "/webhooks/payment", "", map[string]interface{}{
		"external_id": "top-abc", "status": "COMPLETED",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.writer.Entries)
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	f := newWebhookFixture(t)
	rec := f.post(t, "/webhooks/payment", callbackToken, map[string]interface{}{
		"status": "COMPLETED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/webhooks/payout", callbackToken, map[string]interface{}{
		"external_id": "out-def",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUnknownExternalID(t *testing.T) {
	f := newWebhookFixture(t)
	rec := f.post(t, "/webhooks/payment", callbackToken, map[string]interface{}{
		"external_id": "top-unknown", "status": "COMPLETED",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentWebhookAppliesAndReplays(t *testing.T) {
	f := newWebhookFixture(t)
	body := map[string]interface{}{"external_id": "top-abc", "status": "COMPLETED"}

	rec := f.post(t, "/webhooks/payment", callbackToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp["outcome"])
	assert.Equal(t, domain.PaymentStatusSuccess, resp["status"])
	available, _ := f.writer.Balance(f.wallet.ID)
	assert.Equal(t, int64(10000000), available)

	// Provider retry: same delivery, no double credit.
	rec = f.post(t, "/webhooks/payment", callbackToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "duplicate", resp["outcome"])
	available, _ = f.writer.Balance(f.wallet.ID)
	assert.Equal(t, int64(10000000), available)
	assert.True(t, f.writer.Reconciled(f.wallet.ID))
}

func TestPayoutWebhookFailureRefundsOnce(t *testing.T) {
	f := newWebhookFixture(t)
	// The gross debit happened at request time; reflect it in the ledger.
	_, err := f.writer.Apply(context.Background(), f.debit())
	require.NoError(t, err)
	body := map[string]interface{}{
		"external_id": "out-def", "status": "FAILED", "failure_reason": "account closed",
	}

	rec := f.post(t, "/webhooks/payout", callbackToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp["outcome"])
	available, _ := f.writer.Balance(f.wallet.ID)
	assert.Equal(t, int64(8000000), available)

	rec = f.post(t, "/webhooks/payout", callbackToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "duplicate", resp["outcome"])
	available, _ = f.writer.Balance(f.wallet.ID)
	assert.Equal(t, int64(8000000), available)
	assert.True(t, f.writer.Reconciled(f.wallet.ID))
}

func TestPayoutWebhookUnknownStatusIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	rec := f.post(t, "/webhooks/payout", callbackToken, map[string]interface{}{
		"external_id": "out-def", "status": "BRAND_NEW_STATE",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["outcome"])
	assert.Equal(t, domain.PayoutStatusPending, resp["status"])
}

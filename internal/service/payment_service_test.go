package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shiftly/config"
	"shiftly/internal/domain"
	"shiftly/internal/ledger/ledgertest"
	"shiftly/internal/models"
	"shiftly/pkg/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Policy: config.PolicyConfig{
			MinTopUpCents:    1000000,
			MinPayoutCents:   5000000,
			PayoutFeeBps:     250,
			FreeWeeklyPayout: true,
			ReviewWindow:     72 * time.Hour,
			SettlementLag:    24 * time.Hour,
		},
	}
}

func newPaymentFixture(t *testing.T) (*PaymentService, *ledgertest.Writer, *fakeWallets, *fakePayments, *mockProvider) {
	t.Helper()
	writer := ledgertest.New()
	wallets := newFakeWallets()
	payments := newFakePayments(writer)
	provider := &mockProvider{}
	svc := NewPaymentService(testConfig(), zap.NewNop(), writer, payments, wallets, provider)
	return svc, writer, wallets, payments, provider
}

func TestCreateIntentBelowMinimum(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture(t)
	_, err := svc.CreateIntent(context.Background(), 1, 999999)
	assert.ErrorIs(t, err, domain.ErrAmountBelowMinimum)
}

func TestCreateIntentSubmitsInvoice(t *testing.T) {
	svc, writer, _, _, provider := newPaymentFixture(t)
	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&processor.Invoice{ID: "inv-1", Status: "PENDING"}, nil)

	p, err := svc.CreateIntent(context.Background(), 7, 2000000)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.Equal(t, "inv-1", p.ProviderPaymentID)
	assert.NotEmpty(t, p.ExternalID)
	// No money moves before the success webhook.
	assert.Empty(t, writer.Entries)
	provider.AssertExpectations(t)
}

func TestSuccessCallbackCreditsExactlyOnce(t *testing.T) {
	svc, writer, wallets, _, provider := newPaymentFixture(t)
	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&processor.Invoice{ID: "inv-1"}, nil)
	p, err := svc.CreateIntent(context.Background(), 7, 2000000)
	require.NoError(t, err)
	w, _ := wallets.GetByUserID(context.Background(), 7)
	writer.SeedWallet(*w)

	cb := PaymentCallback{ExternalID: p.ExternalID, Status: "COMPLETED"}
	got, outcome, err := svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	assert.Equal(t, CallbackApplied, outcome)
	assert.Equal(t, domain.PaymentStatusSuccess, got.Status)
	available, _ := writer.Balance(w.ID)
	assert.Equal(t, int64(2000000), available)

	// Replay of the same delivery changes nothing.
	_, outcome, err = svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	assert.Equal(t, CallbackDuplicate, outcome)
	available, _ = writer.Balance(w.ID)
	assert.Equal(t, int64(2000000), available)
	assert.Len(t, writer.EntriesFor(w.ID), 1)
	assert.True(t, writer.Reconciled(w.ID))
}

func TestFailedCallbackNeverCredits(t *testing.T) {
	svc, writer, wallets, _, provider := newPaymentFixture(t)
	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&processor.Invoice{ID: "inv-1"}, nil)
	p, err := svc.CreateIntent(context.Background(), 7, 2000000)
	require.NoError(t, err)
	w, _ := wallets.GetByUserID(context.Background(), 7)
	writer.SeedWallet(*w)

	got, outcome, err := svc.HandleCallback(context.Background(), PaymentCallback{
		ExternalID: p.ExternalID, Status: "FAILED", FailureReason: "card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, CallbackApplied, outcome)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)
	assert.Empty(t, writer.Entries)

	// A late success for an already-failed payment must not credit.
	_, outcome, err = svc.HandleCallback(context.Background(), PaymentCallback{
		ExternalID: p.ExternalID, Status: "COMPLETED",
	})
	require.NoError(t, err)
	assert.Equal(t, CallbackDuplicate, outcome)
	assert.Empty(t, writer.Entries)
}

func TestUnknownProviderStatusIgnored(t *testing.T) {
	svc, writer, wallets, _, provider := newPaymentFixture(t)
	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&processor.Invoice{ID: "inv-1"}, nil)
	p, err := svc.CreateIntent(context.Background(), 7, 2000000)
	require.NoError(t, err)
	w, _ := wallets.GetByUserID(context.Background(), 7)
	writer.SeedWallet(*w)

	_, outcome, err := svc.HandleCallback(context.Background(), PaymentCallback{
		ExternalID: p.ExternalID, Status: "SOME_NEW_STATE",
	})
	require.NoError(t, err)
	assert.Equal(t, CallbackIgnored, outcome)
	assert.Empty(t, writer.Entries)
}

func TestCallbackUnknownExternalID(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture(t)
	_, _, err := svc.HandleCallback(context.Background(), PaymentCallback{
		ExternalID: "top-nope", Status: "COMPLETED",
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateIntentInactiveWallet(t *testing.T) {
	svc, _, wallets, _, _ := newPaymentFixture(t)
	wallets.add(models.Wallet{ID: 5, UserID: 7, Currency: "IDR", IsActive: false})
	_, err := svc.CreateIntent(context.Background(), 7, 2000000)
	assert.ErrorIs(t, err, domain.ErrWalletInactive)
}

func TestCreateIntentProviderError(t *testing.T) {
	svc, writer, _, payments, provider := newPaymentFixture(t)
	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(nil, errors.New("processor down"))
	_, err := svc.CreateIntent(context.Background(), 7, 2000000)
	require.Error(t, err)
	assert.Empty(t, writer.Entries)
	// The pending record remains for the operator to inspect.
	assert.Len(t, payments.byID, 1)
}

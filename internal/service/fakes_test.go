package service

import (
	"context"
	"time"

	"shiftly/internal/ledger/ledgertest"
	"shiftly/internal/models"
	"shiftly/pkg/processor"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// In-memory stores for service tests. Status reads are overlaid with the fake
// writer's guard state so a guarded transition is visible on the next read,
// the way a database row would be.

type fakeWallets struct {
	byUser map[uint]*models.Wallet
	nextID uint
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{byUser: make(map[uint]*models.Wallet), nextID: 1}
}

func (f *fakeWallets) add(w models.Wallet) *models.Wallet {
	cp := w
	f.byUser[w.UserID] = &cp
	return &cp
}

func (f *fakeWallets) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	for _, w := range f.byUser {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWallets) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeWallets) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	if w, ok := f.byUser[userID]; ok {
		return w, nil
	}
	f.nextID++
	w := &models.Wallet{ID: f.nextID, UserID: userID, Currency: "IDR", IsActive: true}
	f.byUser[userID] = w
	return w, nil
}

type fakePayments struct {
	writer *ledgertest.Writer
	byID   map[uint]*models.PaymentTransaction
	nextID uint
}

func newFakePayments(w *ledgertest.Writer) *fakePayments {
	return &fakePayments{writer: w, byID: make(map[uint]*models.PaymentTransaction)}
}

func (f *fakePayments) overlay(p *models.PaymentTransaction) *models.PaymentTransaction {
	cp := *p
	if s := f.writer.Status("payment_transactions", p.ID); s != "" {
		cp.Status = s
	}
	return &cp
}

func (f *fakePayments) Create(ctx context.Context, p *models.PaymentTransaction) error {
	f.nextID++
	p.ID = f.nextID
	f.byID[p.ID] = p
	f.writer.SetStatus("payment_transactions", p.ID, p.Status)
	return nil
}

func (f *fakePayments) GetByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.overlay(p), nil
}

func (f *fakePayments) GetByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error) {
	for _, p := range f.byID {
		if p.ExternalID == externalID {
			return f.overlay(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) SetProviderPaymentID(ctx context.Context, id uint, providerID string) error {
	if p, ok := f.byID[id]; ok {
		p.ProviderPaymentID = providerID
	}
	return nil
}

func (f *fakePayments) ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, p := range f.byID {
		if p.BusinessID == businessID {
			out = append(out, *f.overlay(p))
		}
	}
	return out, nil
}

type fakePayouts struct {
	writer *ledgertest.Writer
}

func newFakePayouts(w *ledgertest.Writer) *fakePayouts {
	return &fakePayouts{writer: w}
}

func (f *fakePayouts) all() []*models.PayoutRequest {
	var out []*models.PayoutRequest
	for _, rec := range f.writer.Created {
		if p, ok := rec.(*models.PayoutRequest); ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePayouts) overlay(p *models.PayoutRequest) *models.PayoutRequest {
	cp := *p
	if s := f.writer.Status("payout_requests", p.ID); s != "" {
		cp.Status = s
	}
	return &cp
}

func (f *fakePayouts) GetByID(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	for _, p := range f.all() {
		if p.ID == id {
			return f.overlay(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayouts) GetByExternalID(ctx context.Context, externalID string) (*models.PayoutRequest, error) {
	for _, p := range f.all() {
		if p.ExternalID == externalID {
			return f.overlay(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayouts) SetProviderPayoutID(ctx context.Context, id uint, providerID string) error {
	for _, p := range f.all() {
		if p.ID == id {
			p.ProviderPayoutID = providerID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePayouts) ListByWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.PayoutRequest, error) {
	var out []models.PayoutRequest
	for _, p := range f.all() {
		if p.WorkerID == workerID {
			out = append(out, *f.overlay(p))
		}
	}
	return out, nil
}

func (f *fakePayouts) CountChargeableSince(ctx context.Context, workerID uint, since time.Time) (int64, error) {
	var n int64
	for _, p := range f.all() {
		cur := f.overlay(p)
		if cur.WorkerID != workerID || cur.RequestedAt.Before(since) {
			continue
		}
		if cur.Status == "failed" || cur.Status == "cancelled" {
			continue
		}
		n++
	}
	return n, nil
}

type fakeHolds struct {
	writer *ledgertest.Writer
	seeded []*models.HoldRecord
}

func newFakeHolds(w *ledgertest.Writer) *fakeHolds {
	return &fakeHolds{writer: w}
}

func (f *fakeHolds) seed(h *models.HoldRecord) {
	f.seeded = append(f.seeded, h)
	f.writer.SetStatus("hold_records", h.ID, h.Status)
}

func (f *fakeHolds) all() []*models.HoldRecord {
	out := append([]*models.HoldRecord{}, f.seeded...)
	for _, rec := range f.writer.Created {
		if h, ok := rec.(*models.HoldRecord); ok {
			out = append(out, h)
		}
	}
	return out
}

func (f *fakeHolds) overlay(h *models.HoldRecord) *models.HoldRecord {
	cp := *h
	if s := f.writer.Status("hold_records", h.ID); s != "" {
		cp.Status = s
	}
	return &cp
}

func (f *fakeHolds) GetByID(ctx context.Context, id uint) (*models.HoldRecord, error) {
	for _, h := range f.all() {
		if h.ID == id {
			return f.overlay(h), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHolds) GetByBookingID(ctx context.Context, bookingID uint) (*models.HoldRecord, error) {
	for _, h := range f.all() {
		if h.BookingID == bookingID {
			return f.overlay(h), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHolds) ListDueForRelease(ctx context.Context, now time.Time, limit int) ([]models.HoldRecord, error) {
	var out []models.HoldRecord
	for _, h := range f.all() {
		cur := f.overlay(h)
		if cur.Status == "pending_review" && !cur.ReviewEndsAt.After(now) {
			out = append(out, *cur)
		}
	}
	return out, nil
}

func (f *fakeHolds) ListDueForClose(ctx context.Context, before time.Time, limit int) ([]models.HoldRecord, error) {
	var out []models.HoldRecord
	for _, h := range f.all() {
		cur := f.overlay(h)
		if cur.Status == "available" && cur.ReleasedAt != nil && !cur.ReleasedAt.After(before) {
			out = append(out, *cur)
		}
	}
	return out, nil
}

type fakeBookings struct {
	writer *ledgertest.Writer
	byID   map[uint]*models.Booking
	nextID uint
}

func newFakeBookings(w *ledgertest.Writer) *fakeBookings {
	return &fakeBookings{writer: w, byID: make(map[uint]*models.Booking)}
}

func (f *fakeBookings) add(b models.Booking) *models.Booking {
	if b.ID == 0 {
		f.nextID++
		b.ID = f.nextID
	}
	cp := b
	f.byID[cp.ID] = &cp
	f.writer.SetStatus("bookings", cp.ID, cp.Status)
	return &cp
}

func (f *fakeBookings) overlay(b *models.Booking) *models.Booking {
	cp := *b
	if s := f.writer.Status("bookings", b.ID); s != "" {
		cp.Status = s
	}
	return &cp
}

func (f *fakeBookings) Create(ctx context.Context, b *models.Booking) error {
	f.nextID++
	b.ID = f.nextID
	f.byID[b.ID] = b
	f.writer.SetStatus("bookings", b.ID, b.Status)
	return nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.overlay(b), nil
}

func (f *fakeBookings) UpdateStatusIf(ctx context.Context, id uint, from []string, to string, set map[string]interface{}) (bool, error) {
	b, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	cur := f.overlay(b).Status
	for _, s := range from {
		if s == cur {
			f.writer.SetStatus("bookings", id, to)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) ListOverlapping(ctx context.Context, workerID, businessID uint, from, to time.Time, statuses []string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		cur := f.overlay(b)
		if cur.WorkerID != workerID || cur.BusinessID != businessID {
			continue
		}
		ok := false
		for _, s := range statuses {
			if cur.Status == s {
				ok = true
			}
		}
		if !ok {
			continue
		}
		if cur.StartDate.Before(to) && !cur.EndDate.Before(from) {
			out = append(out, *cur)
		}
	}
	return out, nil
}

type fakeBanks struct {
	byID   map[uint]*models.BankAccount
	nextID uint
}

func newFakeBanks() *fakeBanks {
	return &fakeBanks{byID: make(map[uint]*models.BankAccount)}
}

func (f *fakeBanks) add(a models.BankAccount) *models.BankAccount {
	if a.ID == 0 {
		f.nextID++
		a.ID = f.nextID
	}
	cp := a
	f.byID[cp.ID] = &cp
	return &cp
}

func (f *fakeBanks) Create(ctx context.Context, a *models.BankAccount) error {
	f.nextID++
	a.ID = f.nextID
	f.byID[a.ID] = a
	return nil
}

func (f *fakeBanks) GetByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeBanks) ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var out []models.BankAccount
	for _, a := range f.byID {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeUsers struct {
	byID   map[uint]*models.User
	nextID uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uint]*models.User)}
}

func (f *fakeUsers) add(u models.User) *models.User {
	if u.ID == 0 {
		f.nextID++
		u.ID = f.nextID
	}
	cp := u
	f.byID[cp.ID] = &cp
	return &cp
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// mockProvider is a testify mock over the processor interface.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateInvoice(ctx context.Context, req processor.InvoiceRequest) (*processor.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Invoice), args.Error(1)
}

func (m *mockProvider) CreateDisbursement(ctx context.Context, req processor.DisbursementRequest) (*processor.Disbursement, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Disbursement), args.Error(1)
}

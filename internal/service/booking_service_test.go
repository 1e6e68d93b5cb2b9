package service

import (
	"context"
	"testing"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/ledger/ledgertest"
	"shiftly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBookingFixture(t *testing.T) (*BookingService, *fakeBookings, *fakeUsers) {
	t.Helper()
	bookings := newFakeBookings(ledgertest.New())
	users := newFakeUsers()
	return NewBookingService(zap.NewNop(), bookings, users), bookings, users
}

func TestBookingLifecycle(t *testing.T) {
	svc, _, users := newBookingFixture(t)
	worker := users.add(models.User{Role: domain.RoleWorker, Email: "w@example.com"})

	b, err := svc.Create(context.Background(), 1, worker.ID, "Barista shift", 2000000,
		time.Now().Add(24*time.Hour), time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, b.Status)

	b, err = svc.Accept(context.Background(), worker.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusAccepted, b.Status)

	b, err = svc.Start(context.Background(), worker.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, b.Status)

	// Accepting again is a stale transition.
	_, err = svc.Accept(context.Background(), worker.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingAcceptWrongWorker(t *testing.T) {
	svc, _, users := newBookingFixture(t)
	worker := users.add(models.User{Role: domain.RoleWorker, Email: "w@example.com"})
	b, err := svc.Create(context.Background(), 1, worker.ID, "Shift", 2000000,
		time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), worker.ID+1, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingCreateRejectsBadDates(t *testing.T) {
	svc, _, users := newBookingFixture(t)
	worker := users.add(models.User{Role: domain.RoleWorker, Email: "w@example.com"})
	_, err := svc.Create(context.Background(), 1, worker.ID, "Shift", 2000000,
		time.Now().Add(48*time.Hour), time.Now())
	assert.ErrorIs(t, err, ErrBookingDates)
}

func TestBookingCreateRejectsNonWorker(t *testing.T) {
	svc, _, users := newBookingFixture(t)
	biz := users.add(models.User{Role: domain.RoleBusiness, Email: "b@example.com"})
	_, err := svc.Create(context.Background(), 1, biz.ID, "Shift", 2000000,
		time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingCancelBeforeWork(t *testing.T) {
	svc, _, users := newBookingFixture(t)
	worker := users.add(models.User{Role: domain.RoleWorker, Email: "w@example.com"})
	b, err := svc.Create(context.Background(), 1, worker.ID, "Shift", 2000000,
		time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	b, err = svc.CancelBeforeWork(context.Background(), 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, b.Status)

	// Terminal; no further transitions.
	_, err = svc.Accept(context.Background(), worker.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

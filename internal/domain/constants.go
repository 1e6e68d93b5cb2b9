package domain

const (
	RoleBusiness = "BUSINESS"
	RoleWorker   = "WORKER"
	RoleAdmin    = "ADMIN"
)

// Payment (top-up) statuses. All but pending are terminal.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
	PaymentStatusExpired = "expired"
)

// Payout (withdrawal) statuses. completed, failed and cancelled are terminal.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// Hold (job escrow) statuses. released and cancelled are terminal.
const (
	// HoldStatusHold is the pre-review earmark state in the status
	// vocabulary. Holds are persisted in the same transaction as their funds
	// movement and so enter at pending_review directly.
	HoldStatusHold          = "hold"
	HoldStatusPendingReview = "pending_review"
	HoldStatusAvailable     = "available"
	HoldStatusDisputed      = "disputed"
	HoldStatusCancelled     = "cancelled"
	HoldStatusReleased      = "released"
)

const (
	BookingStatusPending    = "pending"
	BookingStatusAccepted   = "accepted"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

// Ledger entry kinds.
const (
	EntryKindHold    = "hold"
	EntryKindRelease = "release"
	EntryKindEarn    = "earn"
	EntryKindPayout  = "payout"
	EntryKindRefund  = "refund"
	EntryKindCredit  = "credit"
	EntryKindDebit   = "debit"
)

// Wallet balance buckets.
const (
	BucketAvailable = "available"
	BucketPending   = "pending"
)

// Dispute resolution outcomes.
const (
	ResolutionRelease = "release"
	ResolutionCancel  = "cancel"
)

// Compliance day-counter statuses and statutory thresholds.
const (
	ComplianceOK      = "ok"
	ComplianceWarning = "warning"
	ComplianceBlocked = "blocked"

	ComplianceWarningDays = 15
	ComplianceBlockedDays = 21
)

func PaymentStatusTerminal(s string) bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusExpired:
		return true
	}
	return false
}

func PayoutStatusTerminal(s string) bool {
	switch s {
	case PayoutStatusCompleted, PayoutStatusFailed, PayoutStatusCancelled:
		return true
	}
	return false
}

func HoldStatusTerminal(s string) bool {
	return s == HoldStatusReleased || s == HoldStatusCancelled
}

// MapProviderPaymentStatus translates processor vocabulary for payment callbacks.
// Unknown statuses map to pending, never to a terminal state.
func MapProviderPaymentStatus(s string) string {
	switch s {
	case "PENDING", "COMPLETED", "SUCCEEDED":
		return PaymentStatusSuccess
	case "FAILED":
		return PaymentStatusFailed
	case "EXPIRED":
		return PaymentStatusExpired
	default:
		return PaymentStatusPending
	}
}

// MapProviderPayoutStatus translates processor vocabulary for payout callbacks.
// Unknown statuses map to pending, never to a terminal state.
func MapProviderPayoutStatus(s string) string {
	switch s {
	case "PROCESSING":
		return PayoutStatusProcessing
	case "COMPLETED", "SUCCEEDED":
		return PayoutStatusCompleted
	case "FAILED", "REJECTED":
		return PayoutStatusFailed
	case "CANCELLED":
		return PayoutStatusCancelled
	default:
		return PayoutStatusPending
	}
}

// ComplianceStatusFor maps a monthly worked-day count to the statutory status.
func ComplianceStatusFor(daysWorked int) string {
	switch {
	case daysWorked >= ComplianceBlockedDays:
		return ComplianceBlocked
	case daysWorked >= ComplianceWarningDays:
		return ComplianceWarning
	default:
		return ComplianceOK
	}
}

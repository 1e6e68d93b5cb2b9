package domain

import "errors"

var (
	ErrAmountBelowMinimum = errors.New("amount below minimum")
	ErrInsufficientFunds  = errors.New("insufficient available balance")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWalletInactive     = errors.New("wallet is inactive")
	ErrInvalidTransition  = errors.New("invalid status transition")
	// ErrAlreadyApplied means the transition was already performed by an earlier
	// delivery of the same event; callers treat it as a successful no-op.
	ErrAlreadyApplied = errors.New("transition already applied")
)

package models

import "errors"

var (
	ErrUnauthorized           = errors.New("ledger: unauthorized")
	ErrInvalidRange           = errors.New("ledger: invalid time range")
	ErrInvalidAmount          = errors.New("ledger: amount must be greater than zero")
	ErrFeeOutOfBounds         = errors.New("ledger: fee cannot exceed 10%")
	ErrNotFound               = errors.New("ledger: stream does not exist")
	ErrNothingWithdrawable    = errors.New("ledger: no funds available to withdraw")
	ErrAlreadyCompleted       = errors.New("ledger: stream has already completed")
	ErrAlreadyMigrated        = errors.New("ledger: migration has already been executed")
	ErrNonMonotonicMigration  = errors.New("ledger: target version must be greater than current version")
	ErrUndefinedMigrationStep = errors.New("ledger: no migration defined for version")
	ErrPaused                 = errors.New("ledger: contract is paused")
	ErrOverflow               = errors.New("ledger: arithmetic overflow")
	ErrInsufficientFunds      = errors.New("ledger: insufficient funds")
	ErrNotLegacy              = errors.New("ledger: stream is not in legacy format")
	ErrLegacyRecord           = errors.New("ledger: stream record requires migration")
	ErrBatchTooLarge          = errors.New("ledger: batch exceeds maximum size")
	ErrAdminNotSet            = errors.New("ledger: admin not set")
	ErrTreasuryNotSet         = errors.New("ledger: treasury not set")
)

// IsNotFound reports whether err indicates a missing stream record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

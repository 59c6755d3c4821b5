package errs

import "errors"

// Domain-specific sentinel errors for the usecase layers
var (
	// Inventory errors
	ErrInventoryNotFound  = errors.New("inventory not found")
	ErrInventoryExhausted = errors.New("no tickets available")

	// Hold errors
	ErrHoldNotFound       = errors.New("hold not found")
	ErrInvalidTransition  = errors.New("hold is not in the expected state")
	ErrHoldExpired        = errors.New("hold has expired")
	ErrUnauthorizedHolder = errors.New("hold belongs to a different holder")

	// Store errors
	ErrStoreContention         = errors.New("store contention, retry later")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

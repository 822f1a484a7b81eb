package ledger

import (
	"github.com/pkg/errors"
)

var (
	// ErrNullAmount is returned when an operation needs a magnitude but the
	// amount is null.
	ErrNullAmount = errors.New("uninitialized amount")
	// ErrCommodityMismatch is returned when amounts denominated in different
	// commodities are combined or compared.
	ErrCommodityMismatch = errors.New("commodity mismatch")
	// ErrDivisionByZero is returned when the divisor is exactly zero.
	ErrDivisionByZero = errors.New("divide by zero")
	// ErrInvalidAmount is returned for malformed amount text.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrConversion is returned when an amount does not fit a native numeric type.
	ErrConversion = errors.New("conversion overflow")
	// ErrNoCommodity is returned when an operation needs a commodity but the
	// amount is bare.
	ErrNoCommodity = errors.New("amount has no commodity")
	// ErrNotInitialized is returned when the process-wide pool is used before
	// Initialize or after Shutdown.
	ErrNotInitialized = errors.New("amounts are not initialized")
	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("amounts are already initialized")
)

// AmountError is the single error kind returned at the package boundary.
// Op describes the failed operation, for example "computing [$10.00 + €5.00]",
// and Err holds the cause, which is usually one of the package sentinels.
type AmountError struct {
	Op  string
	Err error
}

func newAmountError(op string, err error) *AmountError {
	return &AmountError{Op: op, Err: err}
}

func (e *AmountError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *AmountError) Unwrap() error {
	return e.Err
}

// AsAmountError returns the [AmountError] in the chain of err, or nil.
func AsAmountError(err error) *AmountError {
	var aErr *AmountError
	if errors.As(err, &aErr) {
		return aErr
	}
	return nil
}

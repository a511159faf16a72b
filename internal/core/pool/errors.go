package pool

import (
	"errors"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
)

var (
	// ErrUnauthorized is returned when a caller lacks the required privilege.
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrZeroAmount is returned when an operation is given a zero value.
	ErrZeroAmount = errors.New("amount must be positive")

	// ErrPoolUninitialized is returned when an operation requires an existing
	// pool but none exists.
	ErrPoolUninitialized = errors.New("liquidity pool is not initialized")

	// ErrPoolInconsistent is returned when an internal invariant check fails,
	// e.g. non-zero liquidity supply with an empty reserve.
	ErrPoolInconsistent = errors.New("liquidity pool state is inconsistent")

	// ErrNoPrice is returned when the pricing formula is given a zero amount
	// or reserve, or the result is not representable.
	ErrNoPrice = errors.New("no price available")

	// ErrExceedsReserve is returned when a computed payout exceeds the actual
	// reserve. Unreachable given correct invariants, but always checked.
	ErrExceedsReserve = errors.New("payout exceeds pool reserve")
)

// Aliases for the underlying store and arithmetic errors, so callers can
// match every failure kind against this package.
var (
	ErrInsufficientBalance = ledger.ErrInsufficientBalance
	ErrOverflow            = amount.ErrOverflow
	ErrUnderflow           = amount.ErrUnderflow
	ErrDivisionByZero      = amount.ErrDivisionByZero
)

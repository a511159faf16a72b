// Package amount provides the exact-integer balance type used by the pool
// engine. Every arithmetic operation is checked: overflow, underflow and
// division by zero surface as errors instead of wrapping or saturating,
// because silent wraparound in balance math would fabricate or burn value.
package amount

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Balance is an exact, non-negative amount denominated in the smallest unit
// of an asset.
type Balance uint64

// UnitsPerWhole is the number of smallest units per canonical whole unit.
// The price snapshot quotes one whole unit.
const UnitsPerWhole Balance = 1_000_000

var (
	ErrOverflow       = errors.New("balance arithmetic overflow")
	ErrUnderflow      = errors.New("balance arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// Add returns b + other, or ErrOverflow if the sum exceeds the balance width.
func (b Balance) Add(other Balance) (Balance, error) {
	sum := b + other
	if sum < b {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns b - other, or ErrUnderflow if other exceeds b.
func (b Balance) Sub(other Balance) (Balance, error) {
	if other > b {
		return 0, ErrUnderflow
	}
	return b - other, nil
}

// Mul returns b * other, or ErrOverflow if the product exceeds the balance
// width.
func (b Balance) Mul(other Balance) (Balance, error) {
	p := new(uint256.Int).Mul(uint256.NewInt(uint64(b)), uint256.NewInt(uint64(other)))
	if !p.IsUint64() {
		return 0, ErrOverflow
	}
	return Balance(p.Uint64()), nil
}

// MulDiv returns a * b / div, performing the multiplication in a widened
// intermediate so the product may exceed the balance width as long as the
// quotient fits. Division rounds down.
func MulDiv(a, b, div Balance) (Balance, error) {
	if div == 0 {
		return 0, ErrDivisionByZero
	}
	p := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	p.Div(p, uint256.NewInt(uint64(div)))
	if !p.IsUint64() {
		return 0, ErrOverflow
	}
	return Balance(p.Uint64()), nil
}

func (b Balance) IsZero() bool {
	return b == 0
}

func (b Balance) String() string {
	return fmt.Sprintf("%d", uint64(b))
}

// Package ledger holds the pool daemon's in-memory account ledgers and the
// pool singletons. It is pure bookkeeping: balance reads and writes with
// checked arithmetic, no pricing or pool rules. The pool engine is the only
// writer during normal operation and the host serializes all calls.
package ledger

import (
	"errors"
	"fmt"

	"github.com/ammcore/ammd/internal/core/amount"
)

// Account is an opaque identifier supplied by the host's identity system.
type Account string

// Asset identifies one of the three asset ledgers.
type Asset uint8

const (
	AssetBase Asset = iota
	AssetToken
	AssetLiquidity
)

func (a Asset) String() string {
	switch a {
	case AssetBase:
		return "base"
	case AssetToken:
		return "token"
	case AssetLiquidity:
		return "liquidity"
	default:
		return "unknown"
	}
}

// ParseAsset is the inverse of Asset.String.
func ParseAsset(s string) (Asset, error) {
	switch s {
	case "base":
		return AssetBase, nil
	case "token":
		return AssetToken, nil
	case "liquidity":
		return AssetLiquidity, nil
	default:
		return 0, fmt.Errorf("unknown asset %q", s)
	}
}

// ErrInsufficientBalance is returned when a debit would underflow an account
// balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// PoolState holds the two-sided reserve and the outstanding liquidity shares.
type PoolState struct {
	BaseReserve     amount.Balance
	TokenReserve    amount.Balance
	LiquiditySupply amount.Balance
}

// PriceSnapshot holds the last quoted output for one canonical whole unit of
// input, in each direction. Informational only; never consulted by trade
// validity logic.
type PriceSnapshot struct {
	BasePrice  amount.Balance
	TokenPrice amount.Balance
}

// Store owns the per-account balances for the three asset classes plus the
// pool singletons. Entries exist only while non-zero; an absent key reads as
// zero.
type Store struct {
	balances [3]map[Account]amount.Balance
	pool     PoolState
	price    PriceSnapshot
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.balances {
		s.balances[i] = make(map[Account]amount.Balance)
	}
	return s
}

// Balance returns the account's balance in the given asset ledger, zero if
// the account has no entry.
func (s *Store) Balance(asset Asset, account Account) amount.Balance {
	return s.balances[asset][account]
}

// SetBalance unconditionally overwrites a balance. It bypasses all pool
// invariants; only the privileged admin path and fixtures use it.
func (s *Store) SetBalance(asset Asset, account Account, value amount.Balance) {
	if value.IsZero() {
		delete(s.balances[asset], account)
		return
	}
	s.balances[asset][account] = value
}

// Credit adds to an account balance with overflow checking.
func (s *Store) Credit(asset Asset, account Account, value amount.Balance) error {
	newBal, err := s.balances[asset][account].Add(value)
	if err != nil {
		return err
	}
	s.SetBalance(asset, account, newBal)
	return nil
}

// Debit subtracts from an account balance. A debit past zero fails with
// ErrInsufficientBalance and leaves the balance unchanged.
func (s *Store) Debit(asset Asset, account Account, value amount.Balance) error {
	newBal, err := s.balances[asset][account].Sub(value)
	if err != nil {
		return ErrInsufficientBalance
	}
	s.SetBalance(asset, account, newBal)
	return nil
}

func (s *Store) Pool() PoolState {
	return s.pool
}

func (s *Store) SetPool(p PoolState) {
	s.pool = p
}

func (s *Store) Price() PriceSnapshot {
	return s.price
}

func (s *Store) SetPrice(p PriceSnapshot) {
	s.price = p
}

// Sum returns the total of all per-account balances in one asset ledger.
func (s *Store) Sum(asset Asset) (amount.Balance, error) {
	var total amount.Balance
	var err error
	for _, b := range s.balances[asset] {
		total, err = total.Add(b)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Accounts returns every account with a non-zero balance in the asset ledger.
func (s *Store) Accounts(asset Asset) []Account {
	out := make([]Account, 0, len(s.balances[asset]))
	for a := range s.balances[asset] {
		out = append(out, a)
	}
	return out
}

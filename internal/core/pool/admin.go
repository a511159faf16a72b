package pool

import (
	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
)

// Capability is the host-issued token gating the privileged operations. The
// host's authentication collaborator decides who gets a privileged one; the
// engine only inspects it.
type Capability struct {
	privileged bool
}

// RootCapability returns a capability that passes every privilege check.
func RootCapability() Capability {
	return Capability{privileged: true}
}

// UserCapability returns a capability for an ordinary signed caller.
func UserCapability() Capability {
	return Capability{}
}

func (c Capability) Privileged() bool {
	return c.privileged
}

// SetBaseBalance unconditionally overwrites an account's base balance. It is
// an out-of-band override used for bootstrapping and fixtures; it bypasses
// the conservation invariant by design.
func (e *Engine) SetBaseBalance(cap Capability, account ledger.Account, value amount.Balance) error {
	if !cap.Privileged() {
		return ErrUnauthorized
	}
	e.store.SetBalance(ledger.AssetBase, account, value)
	return nil
}

// SetTokenBalance unconditionally overwrites an account's token balance.
func (e *Engine) SetTokenBalance(cap Capability, account ledger.Account, value amount.Balance) error {
	if !cap.Privileged() {
		return ErrUnauthorized
	}
	e.store.SetBalance(ledger.AssetToken, account, value)
	return nil
}

// TransferBase moves base balance between two accounts.
func (e *Engine) TransferBase(cap Capability, from, to ledger.Account, value amount.Balance) error {
	return e.transfer(cap, ledger.AssetBase, from, to, value)
}

// TransferToken moves token balance between two accounts.
func (e *Engine) TransferToken(cap Capability, from, to ledger.Account, value amount.Balance) error {
	return e.transfer(cap, ledger.AssetToken, from, to, value)
}

// TransferLiquidity moves liquidity shares between two accounts.
func (e *Engine) TransferLiquidity(cap Capability, from, to ledger.Account, value amount.Balance) error {
	return e.transfer(cap, ledger.AssetLiquidity, from, to, value)
}

// transfer requires the source to hold at least the transferred amount, so
// moving an entire balance is legal.
func (e *Engine) transfer(cap Capability, asset ledger.Asset, from, to ledger.Account, value amount.Balance) error {
	if !cap.Privileged() {
		return ErrUnauthorized
	}

	fromBalance := e.store.Balance(asset, from)
	if fromBalance < value {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}

	newFrom, err := fromBalance.Sub(value)
	if err != nil {
		return ErrInsufficientBalance
	}
	newTo, err := e.store.Balance(asset, to).Add(value)
	if err != nil {
		return err
	}

	e.store.SetBalance(asset, from, newFrom)
	e.store.SetBalance(asset, to, newTo)
	return nil
}

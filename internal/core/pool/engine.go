// Package pool implements the state-transition engine of the two-asset
// constant-product market: liquidity deposits and withdrawals, fee-bearing
// swaps, privileged ledger overrides and the informational price snapshot.
//
// Every public operation is a single atomic transition: all preconditions are
// validated and all new values computed before anything is written, so a
// failing operation leaves the ledger untouched. The engine performs no
// locking; the host serializes calls (one mutation at a time).
package pool

import (
	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
)

// Engine applies pool operations against a ledger store.
type Engine struct {
	store     *ledger.Store
	sink      Sink
	priceUnit amount.Balance
}

// Config carries the engine collaborators supplied by the host.
type Config struct {
	// Sink receives events after committed mutations. Nil means discard.
	Sink Sink

	// PriceUnit is the canonical input amount quoted by the price snapshot.
	// Zero means amount.UnitsPerWhole.
	PriceUnit amount.Balance
}

func NewEngine(store *ledger.Store, cfg Config) *Engine {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	unit := cfg.PriceUnit
	if unit.IsZero() {
		unit = amount.UnitsPerWhole
	}
	return &Engine{
		store:     store,
		sink:      sink,
		priceUnit: unit,
	}
}

// BalanceOf returns an account's balance in the given asset ledger.
func (e *Engine) BalanceOf(asset ledger.Asset, account ledger.Account) amount.Balance {
	return e.store.Balance(asset, account)
}

// ReserveOf returns the pool's reserve of the given asset. The liquidity
// "reserve" is the total outstanding supply.
func (e *Engine) ReserveOf(asset ledger.Asset) amount.Balance {
	pool := e.store.Pool()
	switch asset {
	case ledger.AssetBase:
		return pool.BaseReserve
	case ledger.AssetToken:
		return pool.TokenReserve
	default:
		return pool.LiquiditySupply
	}
}

// TotalLiquiditySupply returns the outstanding liquidity shares.
func (e *Engine) TotalLiquiditySupply() amount.Balance {
	return e.store.Pool().LiquiditySupply
}

// LastPrice returns the last quoted output for one canonical unit of the
// given asset. Informational only.
func (e *Engine) LastPrice(asset ledger.Asset) (amount.Balance, error) {
	price := e.store.Price()
	switch asset {
	case ledger.AssetBase:
		return price.BasePrice, nil
	case ledger.AssetToken:
		return price.TokenPrice, nil
	default:
		return 0, ErrNoPrice
	}
}

// DepositLiquidity deposits paired reserves and mints liquidity shares.
//
// The first deposit bootstraps the pool: the stated base and token values
// become the initial price-setting reserves and the minted liquidity equals
// the base value (one share per smallest base unit at genesis). Subsequent
// deposits state only the base value; the required token contribution is
// derived from the current reserve ratio, rounded up so the existing pool is
// never under-contributed, while minted shares round down.
func (e *Engine) DepositLiquidity(sender ledger.Account, baseValue, tokenValue amount.Balance) error {
	if baseValue.IsZero() {
		return ErrZeroAmount
	}

	senderBase := e.store.Balance(ledger.AssetBase, sender)
	if senderBase < baseValue {
		return ErrInsufficientBalance
	}
	senderToken := e.store.Balance(ledger.AssetToken, sender)
	if senderToken < tokenValue {
		return ErrInsufficientBalance
	}

	pool := e.store.Pool()
	senderLiquid := e.store.Balance(ledger.AssetLiquidity, sender)

	var (
		tokenAmount amount.Balance
		minted      amount.Balance
		newPool     ledger.PoolState
		err         error
	)

	if pool.LiquiditySupply.IsZero() {
		// Bootstrap: both sides must be funded, or the pool would carry
		// liquidity supply against an empty reserve.
		if tokenValue.IsZero() {
			return ErrZeroAmount
		}
		tokenAmount = tokenValue
		minted = baseValue
		newPool = ledger.PoolState{
			BaseReserve:     baseValue,
			TokenReserve:    tokenValue,
			LiquiditySupply: minted,
		}
	} else {
		if pool.BaseReserve.IsZero() {
			return ErrPoolInconsistent
		}

		// Required token contribution rounds up (+1); minted shares round
		// down. Both protect the existing liquidity holders from integer
		// truncation.
		tokenAmount, err = amount.MulDiv(baseValue, pool.TokenReserve, pool.BaseReserve)
		if err != nil {
			return err
		}
		tokenAmount, err = tokenAmount.Add(1)
		if err != nil {
			return err
		}
		if tokenAmount > senderToken {
			return ErrInsufficientBalance
		}

		minted, err = amount.MulDiv(baseValue, pool.LiquiditySupply, pool.BaseReserve)
		if err != nil {
			return err
		}

		newPool.BaseReserve, err = pool.BaseReserve.Add(baseValue)
		if err != nil {
			return err
		}
		newPool.TokenReserve, err = pool.TokenReserve.Add(tokenAmount)
		if err != nil {
			return err
		}
		newPool.LiquiditySupply, err = pool.LiquiditySupply.Add(minted)
		if err != nil {
			return err
		}
	}

	newSenderBase, err := senderBase.Sub(baseValue)
	if err != nil {
		return ErrInsufficientBalance
	}
	newSenderToken, err := senderToken.Sub(tokenAmount)
	if err != nil {
		return ErrInsufficientBalance
	}
	newSenderLiquid, err := senderLiquid.Add(minted)
	if err != nil {
		return err
	}

	// Commit. Nothing below can fail.
	e.store.SetBalance(ledger.AssetBase, sender, newSenderBase)
	e.store.SetBalance(ledger.AssetToken, sender, newSenderToken)
	e.store.SetBalance(ledger.AssetLiquidity, sender, newSenderLiquid)
	e.store.SetPool(newPool)

	e.updatePrices()
	e.sink.Emit(Event{Kind: EventDeposit, Account: sender, Amount: minted})
	return nil
}

// WithdrawLiquidity burns liquidity shares and pays out the proportional
// share of both reserves. Redeemed amounts round down; the remainder stays in
// the pool for the remaining liquidity holders.
func (e *Engine) WithdrawLiquidity(sender ledger.Account, liquidValue amount.Balance) error {
	pool := e.store.Pool()
	if pool.LiquiditySupply.IsZero() {
		return ErrPoolUninitialized
	}
	if liquidValue.IsZero() {
		return ErrZeroAmount
	}
	if liquidValue > pool.LiquiditySupply {
		return ErrInsufficientBalance
	}

	senderLiquid := e.store.Balance(ledger.AssetLiquidity, sender)
	if liquidValue > senderLiquid {
		return ErrInsufficientBalance
	}

	baseAmount, err := amount.MulDiv(liquidValue, pool.BaseReserve, pool.LiquiditySupply)
	if err != nil {
		return err
	}
	tokenAmount, err := amount.MulDiv(liquidValue, pool.TokenReserve, pool.LiquiditySupply)
	if err != nil {
		return err
	}

	// Implied by the supply invariant, but asserted rather than assumed.
	if baseAmount > pool.BaseReserve || tokenAmount > pool.TokenReserve {
		return ErrExceedsReserve
	}

	newSenderLiquid, err := senderLiquid.Sub(liquidValue)
	if err != nil {
		return ErrInsufficientBalance
	}
	newSenderBase, err := e.store.Balance(ledger.AssetBase, sender).Add(baseAmount)
	if err != nil {
		return err
	}
	newSenderToken, err := e.store.Balance(ledger.AssetToken, sender).Add(tokenAmount)
	if err != nil {
		return err
	}

	var newPool ledger.PoolState
	newPool.LiquiditySupply, err = pool.LiquiditySupply.Sub(liquidValue)
	if err != nil {
		return err
	}
	newPool.BaseReserve, err = pool.BaseReserve.Sub(baseAmount)
	if err != nil {
		return err
	}
	newPool.TokenReserve, err = pool.TokenReserve.Sub(tokenAmount)
	if err != nil {
		return err
	}

	e.store.SetBalance(ledger.AssetLiquidity, sender, newSenderLiquid)
	e.store.SetBalance(ledger.AssetBase, sender, newSenderBase)
	e.store.SetBalance(ledger.AssetToken, sender, newSenderToken)
	e.store.SetPool(newPool)

	e.updatePrices()
	e.sink.Emit(Event{Kind: EventWithdraw, Account: sender, Amount: liquidValue})
	return nil
}

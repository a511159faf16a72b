package pool

import (
	"github.com/holiman/uint256"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
)

// Trading fee: 0.3%, applied by scaling the input to a 997/1000 basis. The
// retained fee accrues to the reserves and so to liquidity holders.
const (
	feeNumerator   = 997
	feeDenominator = 1000
)

// Quote prices a swap of value against the given reserves using the
// constant-product formula:
//
//	out = (value*997 * outputReserve) / (inputReserve*1000 + value*997)
//
// Integer division rounds down, so the trader never receives more than the
// continuous-formula output. Every multiplication runs in a widened
// intermediate; a zero amount, a zero reserve, or an unrepresentable result
// yields ErrNoPrice.
func Quote(value, inputReserve, outputReserve amount.Balance) (amount.Balance, error) {
	if value.IsZero() || inputReserve.IsZero() || outputReserve.IsZero() {
		return 0, ErrNoPrice
	}

	net := new(uint256.Int).Mul(uint256.NewInt(uint64(value)), uint256.NewInt(feeNumerator))
	numerator := new(uint256.Int).Mul(net, uint256.NewInt(uint64(outputReserve)))
	denominator := new(uint256.Int).Mul(uint256.NewInt(uint64(inputReserve)), uint256.NewInt(feeDenominator))
	denominator.Add(denominator, net)

	out := numerator.Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, ErrNoPrice
	}
	return amount.Balance(out.Uint64()), nil
}

// TradeBaseToToken swaps baseValue of the sender's base asset for tokens at
// the constant-product price.
func (e *Engine) TradeBaseToToken(sender ledger.Account, baseValue amount.Balance) error {
	pool := e.store.Pool()

	tokensBought, err := Quote(baseValue, pool.BaseReserve, pool.TokenReserve)
	if err != nil {
		return err
	}

	senderBase := e.store.Balance(ledger.AssetBase, sender)
	if senderBase < baseValue {
		return ErrInsufficientBalance
	}
	if tokensBought > pool.TokenReserve {
		return ErrExceedsReserve
	}

	newPoolBase, err := pool.BaseReserve.Add(baseValue)
	if err != nil {
		return err
	}
	newSenderToken, err := e.store.Balance(ledger.AssetToken, sender).Add(tokensBought)
	if err != nil {
		return err
	}
	newSenderBase, err := senderBase.Sub(baseValue)
	if err != nil {
		return ErrInsufficientBalance
	}
	newPoolToken, err := pool.TokenReserve.Sub(tokensBought)
	if err != nil {
		return ErrExceedsReserve
	}

	e.store.SetBalance(ledger.AssetBase, sender, newSenderBase)
	e.store.SetBalance(ledger.AssetToken, sender, newSenderToken)
	e.store.SetPool(ledger.PoolState{
		BaseReserve:     newPoolBase,
		TokenReserve:    newPoolToken,
		LiquiditySupply: pool.LiquiditySupply,
	})

	e.updatePrices()
	e.sink.Emit(Event{Kind: EventTokenPurchase, Account: sender, Amount: tokensBought})
	return nil
}

// TradeTokenToBase swaps tokenValue of the sender's tokens for the base asset
// at the constant-product price.
func (e *Engine) TradeTokenToBase(sender ledger.Account, tokenValue amount.Balance) error {
	pool := e.store.Pool()

	baseBought, err := Quote(tokenValue, pool.TokenReserve, pool.BaseReserve)
	if err != nil {
		return err
	}

	senderToken := e.store.Balance(ledger.AssetToken, sender)
	if senderToken < tokenValue {
		return ErrInsufficientBalance
	}
	if baseBought > pool.BaseReserve {
		return ErrExceedsReserve
	}

	newPoolToken, err := pool.TokenReserve.Add(tokenValue)
	if err != nil {
		return err
	}
	newSenderBase, err := e.store.Balance(ledger.AssetBase, sender).Add(baseBought)
	if err != nil {
		return err
	}
	newSenderToken, err := senderToken.Sub(tokenValue)
	if err != nil {
		return ErrInsufficientBalance
	}
	newPoolBase, err := pool.BaseReserve.Sub(baseBought)
	if err != nil {
		return ErrExceedsReserve
	}

	e.store.SetBalance(ledger.AssetToken, sender, newSenderToken)
	e.store.SetBalance(ledger.AssetBase, sender, newSenderBase)
	e.store.SetPool(ledger.PoolState{
		BaseReserve:     newPoolBase,
		TokenReserve:    newPoolToken,
		LiquiditySupply: pool.LiquiditySupply,
	})

	e.updatePrices()
	e.sink.Emit(Event{Kind: EventBasePurchase, Account: sender, Amount: baseBought})
	return nil
}

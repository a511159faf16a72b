package pool

import "github.com/ammcore/ammd/internal/core/ledger"

// updatePrices refreshes the informational price snapshot from the current
// reserves, quoting one canonical unit in each direction. If either quote
// fails (e.g. a reserve drained to zero) the previous snapshot is kept rather
// than overwritten with a sentinel.
func (e *Engine) updatePrices() {
	pool := e.store.Pool()

	basePrice, baseErr := Quote(e.priceUnit, pool.TokenReserve, pool.BaseReserve)
	tokenPrice, tokenErr := Quote(e.priceUnit, pool.BaseReserve, pool.TokenReserve)
	if baseErr != nil || tokenErr != nil {
		return
	}

	e.store.SetPrice(ledger.PriceSnapshot{
		BasePrice:  basePrice,
		TokenPrice: tokenPrice,
	})
}

package rpc

import (
	"encoding/json"
	"strconv"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
)

// Balances travel as decimal strings: they are full-width unsigned integers
// and JSON numbers lose precision past 2^53.
func formatBalance(v amount.Balance) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseBalance(s string) (amount.Balance, *RpcError) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, RpcErrorInvalidParams("Invalid amount: " + s)
	}
	return amount.Balance(v), nil
}

func parseAsset(s string) (ledger.Asset, *RpcError) {
	asset, err := ledger.ParseAsset(s)
	if err != nil {
		return 0, RpcErrorInvalidParams(err.Error())
	}
	return asset, nil
}

// poolStateResult reports the pool singletons after an operation.
func (s *Service) poolStateResult() map[string]interface{} {
	return map[string]interface{}{
		"base_reserve":     formatBalance(s.engine.ReserveOf(ledger.AssetBase)),
		"token_reserve":    formatBalance(s.engine.ReserveOf(ledger.AssetToken)),
		"liquidity_supply": formatBalance(s.engine.TotalLiquiditySupply()),
	}
}

func (s *Service) balanceOf(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
		Asset   string `json:"asset"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account")
	}
	asset, rpcErr := parseAsset(req.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	balance := s.engine.BalanceOf(asset, ledger.Account(req.Account))
	return map[string]interface{}{
		"account": req.Account,
		"asset":   asset.String(),
		"balance": formatBalance(balance),
	}, nil
}

func (s *Service) reserveOf(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Asset string `json:"asset"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAsset(req.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"asset":   asset.String(),
		"reserve": formatBalance(s.engine.ReserveOf(asset)),
	}, nil
}

func (s *Service) liquiditySupply(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"liquidity_supply": formatBalance(s.engine.TotalLiquiditySupply()),
	}, nil
}

func (s *Service) lastPrice(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Asset string `json:"asset"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAsset(req.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	price, err := s.engine.LastPrice(asset)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]interface{}{
		"asset": asset.String(),
		"price": formatBalance(price),
	}, nil
}

// quote prices a hypothetical trade against the current reserves without
// mutating any state.
func (s *Service) quote(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		InputAsset string `json:"input_asset"`
		Value      string `json:"value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	value, rpcErr := parseBalance(req.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var inputAsset, outputAsset ledger.Asset
	switch req.InputAsset {
	case "base":
		inputAsset, outputAsset = ledger.AssetBase, ledger.AssetToken
	case "token":
		inputAsset, outputAsset = ledger.AssetToken, ledger.AssetBase
	default:
		return nil, RpcErrorInvalidParams("input_asset must be base or token")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	output, err := pool.Quote(value, s.engine.ReserveOf(inputAsset), s.engine.ReserveOf(outputAsset))
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]interface{}{
		"input_asset":  inputAsset.String(),
		"output_asset": outputAsset.String(),
		"value":        formatBalance(value),
		"output":       formatBalance(output),
	}, nil
}

func (s *Service) depositLiquidity(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account    string `json:"account"`
		BaseValue  string `json:"base_value"`
		TokenValue string `json:"token_value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account")
	}
	baseValue, rpcErr := parseBalance(req.BaseValue)
	if rpcErr != nil {
		return nil, rpcErr
	}
	tokenValue, rpcErr := parseBalance(req.TokenValue)
	if rpcErr != nil {
		return nil, rpcErr
	}

	account := ledger.Account(req.Account)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.DepositLiquidity(account, baseValue, tokenValue); err != nil {
		return nil, engineError(err)
	}

	result := s.poolStateResult()
	result["account"] = req.Account
	result["liquidity_balance"] = formatBalance(s.engine.BalanceOf(ledger.AssetLiquidity, account))
	return result, nil
}

func (s *Service) withdrawLiquidity(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
		Value   string `json:"value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account")
	}
	value, rpcErr := parseBalance(req.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	account := ledger.Account(req.Account)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.WithdrawLiquidity(account, value); err != nil {
		return nil, engineError(err)
	}

	result := s.poolStateResult()
	result["account"] = req.Account
	result["base_balance"] = formatBalance(s.engine.BalanceOf(ledger.AssetBase, account))
	result["token_balance"] = formatBalance(s.engine.BalanceOf(ledger.AssetToken, account))
	return result, nil
}

func (s *Service) tradeBaseToToken(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.trade(params, ledger.AssetToken, func(account ledger.Account, value amount.Balance) error {
		return s.engine.TradeBaseToToken(account, value)
	})
}

func (s *Service) tradeTokenToBase(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.trade(params, ledger.AssetBase, func(account ledger.Account, value amount.Balance) error {
		return s.engine.TradeTokenToBase(account, value)
	})
}

func (s *Service) trade(params json.RawMessage, boughtAsset ledger.Asset, run func(ledger.Account, amount.Balance) error) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
		Value   string `json:"value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account")
	}
	value, rpcErr := parseBalance(req.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	account := ledger.Account(req.Account)

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.engine.BalanceOf(boughtAsset, account)
	if err := run(account, value); err != nil {
		return nil, engineError(err)
	}
	bought, err := s.engine.BalanceOf(boughtAsset, account).Sub(before)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	result := s.poolStateResult()
	result["account"] = req.Account
	result["sold"] = formatBalance(value)
	result["bought"] = formatBalance(bought)
	result["bought_asset"] = boughtAsset.String()
	return result, nil
}

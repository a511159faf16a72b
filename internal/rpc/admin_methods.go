package rpc

import (
	"encoding/json"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
)

// Operator methods name the calling operator account in the params; the
// authenticator turns it into a capability and the engine rejects the call
// when the capability is not privileged.

func (s *Service) setBaseBalance(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.setBalance(params, ledger.AssetBase, s.engine.SetBaseBalance)
}

func (s *Service) setTokenBalance(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.setBalance(params, ledger.AssetToken, s.engine.SetTokenBalance)
}

func (s *Service) setBalance(params json.RawMessage, asset ledger.Asset, run func(pool.Capability, ledger.Account, amount.Balance) error) (interface{}, *RpcError) {
	var req struct {
		Operator string `json:"operator"`
		Account  string `json:"account"`
		Value    string `json:"value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Operator == "" || req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing operator or account")
	}
	value, rpcErr := parseBalance(req.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	cap := s.auth.Capability(ledger.Account(req.Operator))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := run(cap, ledger.Account(req.Account), value); err != nil {
		return nil, engineError(err)
	}
	return map[string]interface{}{
		"account": req.Account,
		"asset":   asset.String(),
		"balance": formatBalance(value),
	}, nil
}

func (s *Service) transferBase(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.transfer(params, ledger.AssetBase, s.engine.TransferBase)
}

func (s *Service) transferToken(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.transfer(params, ledger.AssetToken, s.engine.TransferToken)
}

func (s *Service) transferLiquidity(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return s.transfer(params, ledger.AssetLiquidity, s.engine.TransferLiquidity)
}

func (s *Service) transfer(params json.RawMessage, asset ledger.Asset, run func(pool.Capability, ledger.Account, ledger.Account, amount.Balance) error) (interface{}, *RpcError) {
	var req struct {
		Operator string `json:"operator"`
		From     string `json:"from"`
		To       string `json:"to"`
		Value    string `json:"value"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Operator == "" || req.From == "" || req.To == "" {
		return nil, RpcErrorInvalidParams("Missing operator, from or to")
	}
	value, rpcErr := parseBalance(req.Value)
	if rpcErr != nil {
		return nil, rpcErr
	}

	cap := s.auth.Capability(ledger.Account(req.Operator))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := run(cap, ledger.Account(req.From), ledger.Account(req.To), value); err != nil {
		return nil, engineError(err)
	}
	return map[string]interface{}{
		"asset":        asset.String(),
		"from":         req.From,
		"to":           req.To,
		"value":        formatBalance(value),
		"from_balance": formatBalance(s.engine.BalanceOf(asset, ledger.Account(req.From))),
		"to_balance":   formatBalance(s.engine.BalanceOf(asset, ledger.Account(req.To))),
	}, nil
}

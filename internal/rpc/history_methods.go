package rpc

import (
	"encoding/json"
	"time"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/storage/journal"
)

func entriesResult(entries []journal.Entry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"id":      e.ID,
			"kind":    e.Kind,
			"account": e.Account,
			"amount":  formatBalance(amount.Balance(e.Amount)),
			"date":    e.At.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func (s *Service) accountEvents(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.history == nil {
		return nil, NewRpcError(RpcNO_HISTORY, "noHistory", "Event journal is disabled")
	}

	var req struct {
		Account string `json:"account"`
		Limit   int    `json:"limit"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account")
	}

	entries, err := s.history.AccountEvents(ledger.Account(req.Account), req.Limit)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]interface{}{
		"account": req.Account,
		"events":  entriesResult(entries),
	}, nil
}

func (s *Service) poolEvents(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.history == nil {
		return nil, NewRpcError(RpcNO_HISTORY, "noHistory", "Event journal is disabled")
	}

	var req struct {
		Limit int `json:"limit"`
	}
	if params != nil {
		if rpcErr := decodeParams(params, &req); rpcErr != nil {
			return nil, rpcErr
		}
	}

	entries, err := s.history.Recent(req.Limit)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]interface{}{
		"events": entriesResult(entries),
	}, nil
}

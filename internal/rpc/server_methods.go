package rpc

import (
	"encoding/json"
	"time"

	"github.com/ammcore/ammd/internal/core/ledger"
)

func (s *Service) ping(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

func (s *Service) serverInfo(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]interface{}{
		"build_version":  s.version,
		"uptime_seconds": int64(time.Since(s.started) / time.Second),
		"journal":        s.history != nil,
		"pool":           s.poolStateResult(),
	}

	if base, err := s.engine.LastPrice(ledger.AssetBase); err == nil {
		if token, err := s.engine.LastPrice(ledger.AssetToken); err == nil {
			info["price"] = map[string]interface{}{
				"base":  formatBalance(base),
				"token": formatBalance(token),
			}
		}
	}

	return info, nil
}

package rpc

// registerAllMethods wires every RPC method to its service handler.
func (s *Server) registerAllMethods() {
	// Server information
	s.registry.Register("server_info", s.svc.serverInfo)
	s.registry.Register("ping", s.svc.ping)

	// Pool queries
	s.registry.Register("balance_of", s.svc.balanceOf)
	s.registry.Register("reserve_of", s.svc.reserveOf)
	s.registry.Register("liquidity_supply", s.svc.liquiditySupply)
	s.registry.Register("last_price", s.svc.lastPrice)
	s.registry.Register("quote", s.svc.quote)

	// Pool state transitions
	s.registry.Register("deposit_liquidity", s.svc.depositLiquidity)
	s.registry.Register("withdraw_liquidity", s.svc.withdrawLiquidity)
	s.registry.Register("trade_base_to_token", s.svc.tradeBaseToToken)
	s.registry.Register("trade_token_to_base", s.svc.tradeTokenToBase)

	// Operator methods (gated on the configured admin accounts)
	s.registry.Register("set_base_balance", s.svc.setBaseBalance)
	s.registry.Register("set_token_balance", s.svc.setTokenBalance)
	s.registry.Register("transfer_base", s.svc.transferBase)
	s.registry.Register("transfer_token", s.svc.transferToken)
	s.registry.Register("transfer_liquidity", s.svc.transferLiquidity)

	// Event history (requires the journal)
	s.registry.Register("account_events", s.svc.accountEvents)
	s.registry.Register("pool_events", s.svc.poolEvents)
}

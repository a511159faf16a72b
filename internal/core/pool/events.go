package pool

import (
	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
)

// EventKind identifies a committed pool mutation.
type EventKind int

const (
	EventDeposit EventKind = iota
	EventWithdraw
	EventTokenPurchase
	EventBasePurchase
)

func (k EventKind) String() string {
	switch k {
	case EventDeposit:
		return "deposit_liquidity"
	case EventWithdraw:
		return "withdraw_liquidity"
	case EventTokenPurchase:
		return "token_purchase"
	case EventBasePurchase:
		return "base_purchase"
	default:
		return "unknown"
	}
}

// Event is the notification emitted after a committed mutation. For deposits
// the amount is the minted liquidity, for withdrawals the redeemed liquidity,
// for trades the bought output amount.
type Event struct {
	Kind    EventKind
	Account ledger.Account
	Amount  amount.Balance
}

// Sink consumes events after each committed mutation. The engine never emits
// for a failed operation and has no dependency on subscribers.
type Sink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

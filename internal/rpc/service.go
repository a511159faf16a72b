package rpc

import (
	"sync"
	"time"

	"github.com/ammcore/ammd/internal/auth"
	"github.com/ammcore/ammd/internal/core/pool"
	"github.com/ammcore/ammd/internal/storage/journal"
)

// Service bundles the collaborators the RPC methods operate on. The engine
// performs no locking of its own, so every handler that touches it holds the
// service lock: state transitions take the write lock, queries the read lock.
// A query can therefore never observe a half-committed transition.
type Service struct {
	mu      sync.RWMutex
	engine  *pool.Engine
	auth    *auth.Authenticator
	history *journal.Journal
	started time.Time
	version string
}

// NewService creates the RPC service. history may be nil when the event
// journal is disabled.
func NewService(engine *pool.Engine, authenticator *auth.Authenticator, history *journal.Journal, version string) *Service {
	return &Service{
		engine:  engine,
		auth:    authenticator,
		history: history,
		started: time.Now(),
		version: version,
	}
}

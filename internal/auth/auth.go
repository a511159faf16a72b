// Package auth is the host-side authentication collaborator: it decides
// which accounts hold administrative privilege and issues the corresponding
// pool capabilities. The engine itself never inspects identities, only the
// capability it is handed.
package auth

import (
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
)

// Authenticator maps accounts to capabilities.
type Authenticator struct {
	admins map[ledger.Account]struct{}
}

// New builds an authenticator from the configured admin account list.
func New(admins []string) *Authenticator {
	a := &Authenticator{admins: make(map[ledger.Account]struct{}, len(admins))}
	for _, admin := range admins {
		a.admins[ledger.Account(admin)] = struct{}{}
	}
	return a
}

// Capability returns the capability for an already-authenticated account:
// privileged for configured admins, ordinary for everyone else.
func (a *Authenticator) Capability(account ledger.Account) pool.Capability {
	if _, ok := a.admins[account]; ok {
		return pool.RootCapability()
	}
	return pool.UserCapability()
}

// IsAdmin reports whether the account is configured as an administrator.
func (a *Authenticator) IsAdmin(account ledger.Account) bool {
	_, ok := a.admins[account]
	return ok
}

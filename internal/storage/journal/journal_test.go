package journal

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/pool"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open("sqlite", filepath.Join(t.TempDir(), "journal.db"), 16)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever", 16)
	assert.Error(t, err)
}

func TestEmitAndAccountEvents(t *testing.T) {
	j := openTestJournal(t)

	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "alice", Amount: 1000})
	j.Emit(pool.Event{Kind: pool.EventTokenPurchase, Account: "alice", Amount: 90})
	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "bob", Amount: 500})

	entries, err := j.AccountEvents("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "token_purchase", entries[0].Kind)
	assert.Equal(t, uint64(90), entries[0].Amount)
	assert.Equal(t, "deposit_liquidity", entries[1].Kind)
	assert.Equal(t, uint64(1000), entries[1].Amount)

	entries, err = j.AccountEvents("bob", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Account)
}

func TestAccountEventsLimit(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "alice", Amount: amount.Balance(i)})
	}

	entries, err := j.AccountEvents("alice", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(4), entries[0].Amount)
	assert.Equal(t, uint64(2), entries[2].Amount)
}

func TestCacheInvalidatedOnEmit(t *testing.T) {
	j := openTestJournal(t)

	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "alice", Amount: 1})
	entries, err := j.AccountEvents("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A new event for the same account must show up on the next query.
	j.Emit(pool.Event{Kind: pool.EventWithdraw, Account: "alice", Amount: 2})
	entries, err = j.AccountEvents("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "withdraw_liquidity", entries[0].Kind)
}

func TestRecentAcrossAccounts(t *testing.T) {
	j := openTestJournal(t)

	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "alice", Amount: 1})
	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "bob", Amount: 2})
	j.Emit(pool.Event{Kind: pool.EventBasePurchase, Account: "carol", Amount: 3})

	entries, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "carol", entries[0].Account)
	assert.Equal(t, "bob", entries[1].Account)
}

func TestFullWidthAmountSurvives(t *testing.T) {
	j := openTestJournal(t)

	j.Emit(pool.Event{Kind: pool.EventDeposit, Account: "whale", Amount: math.MaxUint64})

	entries, err := j.AccountEvents("whale", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(math.MaxUint64), entries[0].Amount)
}

func TestAccountEventsEmpty(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.AccountEvents("nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

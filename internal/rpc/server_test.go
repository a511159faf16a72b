package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammcore/ammd/internal/auth"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
	"github.com/ammcore/ammd/internal/storage/journal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	j, err := journal.Open("sqlite", filepath.Join(t.TempDir(), "journal.db"), 16)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	store := ledger.NewStore()
	engine := pool.NewEngine(store, pool.Config{Sink: j})
	authenticator := auth.New([]string{"admin"})

	svc := NewService(engine, authenticator, j, "0.1.0-test")
	return NewServer(svc, 5*time.Second)
}

// call posts one JSON-RPC request and returns the result object.
func call(t *testing.T, srv *Server, method string, params map[string]interface{}) map[string]interface{} {
	t.Helper()

	request := map[string]interface{}{"method": method}
	if params != nil {
		request["params"] = []interface{}{params}
	}
	body, err := json.Marshal(request)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Result)
	return response.Result
}

func requireSuccess(t *testing.T, result map[string]interface{}) {
	t.Helper()
	require.Equal(t, "success", result["status"], "unexpected error: %v", result["error_message"])
}

func requireRpcError(t *testing.T, result map[string]interface{}, errorString string) {
	t.Helper()
	require.Equal(t, "error", result["status"])
	require.Equal(t, errorString, result["error"])
}

// fund credits an account through the operator methods.
func fund(t *testing.T, srv *Server, account string, base, token string) {
	t.Helper()
	requireSuccess(t, call(t, srv, "set_base_balance", map[string]interface{}{
		"operator": "admin", "account": account, "value": base,
	}))
	requireSuccess(t, call(t, srv, "set_token_balance", map[string]interface{}{
		"operator": "admin", "account": account, "value": token,
	}))
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	requireSuccess(t, call(t, srv, "ping", nil))
}

func TestUnknownMethod(t *testing.T) {
	srv := newTestServer(t)
	requireRpcError(t, call(t, srv, "does_not_exist", nil), "unknownCmd")
}

func TestInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "jsonInvalid", response.Result["error"])
}

func TestGetDefaultsToServerInfo(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Result["status"])
	assert.Equal(t, "0.1.0-test", response.Result["build_version"])
}

func TestCorsPreflight(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOperatorRequired(t *testing.T) {
	srv := newTestServer(t)

	result := call(t, srv, "set_base_balance", map[string]interface{}{
		"operator": "mallory", "account": "mallory", "value": "1000000",
	})
	requireRpcError(t, result, "forbidden")

	// The rejected write must not have landed.
	result = call(t, srv, "balance_of", map[string]interface{}{
		"account": "mallory", "asset": "base",
	})
	requireSuccess(t, result)
	assert.Equal(t, "0", result["balance"])
}

func TestFundAndQueryBalances(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "5000", "7000")

	result := call(t, srv, "balance_of", map[string]interface{}{"account": "alice", "asset": "base"})
	requireSuccess(t, result)
	assert.Equal(t, "5000", result["balance"])

	result = call(t, srv, "balance_of", map[string]interface{}{"account": "alice", "asset": "token"})
	requireSuccess(t, result)
	assert.Equal(t, "7000", result["balance"])

	requireRpcError(t, call(t, srv, "balance_of", map[string]interface{}{
		"account": "alice", "asset": "bananas",
	}), "invalidParams")
}

func TestDepositQuoteTradeFlow(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "2000", "2000")
	fund(t, srv, "bob", "100", "0")

	result := call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "1000", "token_value": "1000",
	})
	requireSuccess(t, result)
	assert.Equal(t, "1000", result["base_reserve"])
	assert.Equal(t, "1000", result["token_reserve"])
	assert.Equal(t, "1000", result["liquidity_balance"])

	// Informational quote does not move state.
	result = call(t, srv, "quote", map[string]interface{}{"input_asset": "base", "value": "100"})
	requireSuccess(t, result)
	assert.Equal(t, "90", result["output"])

	result = call(t, srv, "trade_base_to_token", map[string]interface{}{
		"account": "bob", "value": "100",
	})
	requireSuccess(t, result)
	assert.Equal(t, "100", result["sold"])
	assert.Equal(t, "90", result["bought"])
	assert.Equal(t, "1100", result["base_reserve"])
	assert.Equal(t, "910", result["token_reserve"])

	result = call(t, srv, "balance_of", map[string]interface{}{"account": "bob", "asset": "token"})
	requireSuccess(t, result)
	assert.Equal(t, "90", result["balance"])
}

func TestWithdrawRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "1000", "1000")

	requireSuccess(t, call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "1000", "token_value": "1000",
	}))

	result := call(t, srv, "withdraw_liquidity", map[string]interface{}{
		"account": "alice", "value": "1000",
	})
	requireSuccess(t, result)
	assert.Equal(t, "0", result["base_reserve"])
	assert.Equal(t, "0", result["token_reserve"])
	assert.Equal(t, "0", result["liquidity_supply"])
	assert.Equal(t, "1000", result["base_balance"])
	assert.Equal(t, "1000", result["token_balance"])
}

func TestEngineErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "1000", "1000")

	requireRpcError(t, call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "0", "token_value": "5",
	}), "zeroAmount")

	requireRpcError(t, call(t, srv, "withdraw_liquidity", map[string]interface{}{
		"account": "alice", "value": "10",
	}), "poolEmpty")

	requireRpcError(t, call(t, srv, "trade_base_to_token", map[string]interface{}{
		"account": "alice", "value": "10",
	}), "noPrice")

	requireRpcError(t, call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "9999999", "token_value": "9999999",
	}), "insufficientFunds")
}

func TestTransferMethods(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "1000", "0")

	result := call(t, srv, "transfer_base", map[string]interface{}{
		"operator": "admin", "from": "alice", "to": "bob", "value": "1000",
	})
	requireSuccess(t, result)
	assert.Equal(t, "0", result["from_balance"])
	assert.Equal(t, "1000", result["to_balance"])

	requireRpcError(t, call(t, srv, "transfer_base", map[string]interface{}{
		"operator": "alice", "from": "bob", "to": "alice", "value": "1",
	}), "forbidden")
}

func TestAccountEventsHistory(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "1000", "1000")

	requireSuccess(t, call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "1000", "token_value": "1000",
	}))
	requireSuccess(t, call(t, srv, "withdraw_liquidity", map[string]interface{}{
		"account": "alice", "value": "400",
	}))

	result := call(t, srv, "account_events", map[string]interface{}{"account": "alice"})
	requireSuccess(t, result)

	events, ok := result["events"].([]interface{})
	require.True(t, ok)
	require.Len(t, events, 2)

	first, ok := events[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "withdraw_liquidity", first["kind"])
	assert.Equal(t, "400", first["amount"])
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	srv := newTestServer(t)
	fund(t, srv, "alice", "1000000", "1000000")
	requireSuccess(t, call(t, srv, "deposit_liquidity", map[string]interface{}{
		"account": "alice", "base_value": "100000", "token_value": "100000",
	}))

	// net/http runs handlers concurrently; queries must hold the service
	// lock alongside mutations or the ledger maps race.
	post := func(method string, params map[string]interface{}) {
		request := map[string]interface{}{
			"method": method,
			"params": []interface{}{params},
		}
		body, _ := json.Marshal(request)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		srv.ServeHTTP(rec, req)
	}

	const iterations = 100
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			post("deposit_liquidity", map[string]interface{}{
				"account": "alice", "base_value": "10", "token_value": "0",
			})
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			post("set_base_balance", map[string]interface{}{
				"operator": "admin", "account": "carol", "value": strconv.Itoa(i),
			})
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			post("balance_of", map[string]interface{}{"account": "alice", "asset": "base"})
			post("reserve_of", map[string]interface{}{"asset": "token"})
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			post("quote", map[string]interface{}{"input_asset": "base", "value": "10"})
			post("server_info", map[string]interface{}{})
			post("last_price", map[string]interface{}{"asset": "base"})
		}
	}()

	wg.Wait()

	// The ledger must still answer coherently afterwards.
	result := call(t, srv, "liquidity_supply", nil)
	requireSuccess(t, result)
	assert.NotEqual(t, "0", result["liquidity_supply"])
}

func TestHistoryDisabled(t *testing.T) {
	store := ledger.NewStore()
	engine := pool.NewEngine(store, pool.Config{})
	svc := NewService(engine, auth.New(nil), nil, "0.1.0-test")
	srv := NewServer(svc, 5*time.Second)

	requireRpcError(t, call(t, srv, "account_events", map[string]interface{}{
		"account": "alice",
	}), "noHistory")
}

package rpc

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammcore/ammd/internal/core/pool"
)

func dialHub(t *testing.T, hub *EventHub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub()
	defer hub.Close()

	conn := dialHub(t, hub)

	// The subscriber registers asynchronously on upgrade; emit until the
	// first frame arrives.
	deadline := time.Now().Add(2 * time.Second)
	var payload []byte
	for time.Now().Before(deadline) {
		hub.Emit(pool.Event{Kind: pool.EventDeposit, Account: "alice", Amount: 1000})

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if _, data, err := conn.ReadMessage(); err == nil {
			payload = data
			break
		}
	}
	require.NotNil(t, payload, "no event frame received")

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "pool_event", msg["type"])
	assert.Equal(t, "deposit_liquidity", msg["kind"])
	assert.Equal(t, "alice", msg["account"])
	assert.Equal(t, "1000", msg["amount"])
}

func TestEventHubDropsClosedSubscriber(t *testing.T) {
	hub := NewEventHub()
	defer hub.Close()

	conn := dialHub(t, hub)
	conn.Close()

	// Must not panic or block with a dead subscriber registered.
	for i := 0; i < 300; i++ {
		hub.Emit(pool.Event{Kind: pool.EventWithdraw, Account: "bob", Amount: 1})
	}
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *ResultHub, userID uint) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, userID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestResultHubDeliversToSameUserOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewResultHub()
	go hub.Run(ctx)

	mine := dial(t, newHubServer(t, hub, 7))
	other := dial(t, newHubServer(t, hub, 8))

	assert.Eventually(t, func() bool {
		return hub.ClientCount(7) == 1 && hub.ClientCount(8) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishResult(7, ResultSummary{ID: 3, Score: 50, TotalQuestions: 2, CorrectAnswers: 1, TimeTaken: 9})

	mine.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := mine.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageResultSubmitted, msg.Type)
	assert.Equal(t, 50, msg.Payload["score"])
	assert.Equal(t, 7, msg.Payload["userId"])
	assert.Equal(t, 3, msg.Payload["id"])

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestResultHubPingPong(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewResultHub()
	go hub.Run(ctx)

	conn := dial(t, newHubServer(t, hub, 1))
	assert.Eventually(t, func() bool { return hub.ClientCount(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong","payload":"pong"}`, string(data))
}

func TestResultHubUnregistersOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewResultHub()
	go hub.Run(ctx)

	conn := dial(t, newHubServer(t, hub, 2))
	assert.Eventually(t, func() bool { return hub.ClientCount(2) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount(2) == 0 }, 2*time.Second, 10*time.Millisecond)

	// Publishing with nobody listening is a no-op.
	hub.PublishResult(2, ResultSummary{ID: 1})
}

func TestResultHubStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewResultHub()
	go hub.Run(ctx)

	conn := dial(t, newHubServer(t, hub, 3))
	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 0 }, 2*time.Second, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// MessageResultSubmitted is pushed to a user's feed after each submission.
const MessageResultSubmitted = "result_submitted"

// ResultHub fans stored quiz results out to the submitting user's open
// websocket connections.
type ResultHub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

type Client struct {
	hub    *ResultHub
	id     string
	socket *websocket.Conn
	send   chan []byte
	userID uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type resultPayload struct {
	ResultSummary
	UserID uint `json:"userId"`
}

func NewResultHub() *ResultHub {
	return &ResultHub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns client registration until ctx is cancelled, then closes every
// connection's send queue.
func (h *ResultHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mutex.Unlock()
			log.Printf("Feed client registered: %s for user %d", client.id, client.userID)

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			h.mutex.Unlock()

		case <-ctx.Done():
			h.mutex.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			h.mutex.Unlock()
			return
		}
	}
}

// remove must be called with the write lock held.
func (h *ResultHub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	log.Printf("Feed client unregistered: %s for user %d", client.id, client.userID)
}

// PublishResult never blocks. A client whose queue is full is dropped.
func (h *ResultHub) PublishResult(userID uint, summary ResultSummary) {
	data, err := json.Marshal(Message{
		Type:    MessageResultSubmitted,
		Payload: resultPayload{ResultSummary: summary, UserID: userID},
	})
	if err != nil {
		log.Printf("Error marshaling result message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			log.Printf("Feed client %s send buffer full, dropping connection", client.id)
			h.remove(client)
		}
	}
}

func (h *ResultHub) ClientCount(userID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}

// RegisterClient attaches conn to the user's feed and starts its pumps. It
// returns nil, closing conn, when the hub has stopped.
func (h *ResultHub) RegisterClient(conn *websocket.Conn, userID uint) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *ResultHub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.hub.mutex.RLock()
		defer c.hub.mutex.RUnlock()
		if c.hub.clients[c.userID][c] {
			select {
			case c.send <- data:
			default:
			}
		}

	default:
		log.Printf("Unknown message type: %s from feed client %s", msg.Type, c.id)
	}
}

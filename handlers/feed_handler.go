package handlers

import (
	"log"
	"net/http"
	"strings"

	"quizapp/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type TokenVerifier interface {
	Verify(token string) (services.Identity, error)
}

type FeedHub interface {
	RegisterClient(conn *websocket.Conn, userID uint) *services.Client
}

// FeedHandler upgrades authenticated requests to the live result feed.
type FeedHandler struct {
	tokens   TokenVerifier
	hub      FeedHub
	upgrader websocket.Upgrader
}

// NewFeedHandler accepts a websocket only when allowOrigin approves the
// request's Origin header.
func NewFeedHandler(tokens TokenVerifier, hub FeedHub, allowOrigin func(origin string) bool) *FeedHandler {
	return &FeedHandler{
		tokens: tokens,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowOrigin(r.Header.Get("Origin"))
			},
		},
	}
}

func (h *FeedHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		respondError(c, services.ErrMissingToken, "")
		return
	}

	identity, err := h.tokens.Verify(token)
	if err != nil {
		respondError(c, services.ErrInvalidToken, "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		log.Printf("WebSocket upgrade failed for user %d: %v", identity.UserID, err)
		c.Abort()
		return
	}

	h.hub.RegisterClient(conn, identity.UserID)
}

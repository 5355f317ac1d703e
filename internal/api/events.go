package api

import (
	"net/http"
	"sync"

	"hunty_backend/internal/model"
	"hunty_backend/pkg/auth"
	"hunty_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventHub fans hunt lifecycle events out to connected websocket
// clients. Publish never blocks the publishing operation: slow clients
// are dropped.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	upgrader websocket.Upgrader
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func NewEventRoutes(handler *gin.RouterGroup, hub *EventHub, a *auth.TelegramAuth) {
	h := handler.Group("/events")
	h.Use(a.Middleware())
	{
		h.GET("/ws", hub.serveWS)
	}
}

func (h *EventHub) Publish(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Logger().Error("failed to encode event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			// Client is not keeping up; disconnect it.
			delete(h.clients, conn)
			close(send)
		}
	}
}

func (h *EventHub) serveWS(c *gin.Context) {
	log := logger.Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	send := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)
	go h.readLoop(conn)
}

func (h *EventHub) writeLoop(conn *websocket.Conn, send chan []byte) {
	defer conn.Close()
	for payload := range send {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conn)
			return
		}
	}
}

// readLoop discards inbound frames; the event stream is one-way. It
// exists to notice client disconnects.
func (h *EventHub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *EventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	conn.Close()
}

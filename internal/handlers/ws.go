package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/bertostore/internal/types"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// feedClient serializes writes; gorilla connections allow one writer at a
// time and both the ping loop and Broadcast write.
type feedClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *feedClient) send(write func(conn *websocket.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return write(c.conn)
}

// Hub fans dashboard refresh events out to connected admin sockets.
type Hub struct {
	origins  map[string]struct{}
	logger   log.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

func NewHub(allowedOrigins []string, logger log.FieldLogger) *Hub {
	hub := &Hub{
		origins: make(map[string]struct{}, len(allowedOrigins)),
		logger:  logger,
		clients: make(map[*feedClient]struct{}),
	}

	for _, origin := range allowedOrigins {
		hub.origins[origin] = struct{}{}
	}

	hub.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			_, ok := hub.origins[r.Header.Get("Origin")]
			return ok
		},
	}

	return hub
}

func (hub *Hub) Clients() int {
	if hub == nil {
		return 0
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.clients)
}

func (hub *Hub) register(client *feedClient) {
	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	hub.mu.Unlock()
}

func (hub *Hub) unregister(client *feedClient) {
	hub.mu.Lock()
	_, present := hub.clients[client]
	delete(hub.clients, client)
	hub.mu.Unlock()

	if present {
		client.conn.Close()
	}
}

// Broadcast is a no-op on a nil hub.
func (hub *Hub) Broadcast(event types.FeedEvent) {
	if hub == nil {
		return
	}

	hub.mu.RLock()
	clients := make([]*feedClient, 0, len(hub.clients))

	for client := range hub.clients {
		clients = append(clients, client)
	}
	hub.mu.RUnlock()

	for _, client := range clients {
		err := client.send(func(conn *websocket.Conn) error {
			return conn.WriteJSON(event)
		})

		if err != nil {
			hub.logger.WithError(err).Warn("Failed to broadcast dashboard refresh")
			hub.unregister(client)
		}
	}
}

// ServeDashboard upgrades an authorized admin request to the live feed.
func (hub *Hub) ServeDashboard(ctx *gin.Context) {
	conn, err := hub.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		hub.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &feedClient{conn: conn}

	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	hub.register(client)
	defer hub.unregister(client)

	err = client.send(func(conn *websocket.Conn) error {
		return conn.WriteJSON(types.FeedEvent{
			Type:    types.FeedConnected,
			Message: "WebSocket connection established",
		})
	})

	if err != nil {
		hub.logger.WithError(err).Warn("Failed to send welcome message")
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := client.send(func(conn *websocket.Conn) error {
					return conn.WriteMessage(websocket.PingMessage, nil)
				})

				if err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.logger.WithError(err).Warn("Dashboard socket closed unexpectedly")
			}
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
	}
}

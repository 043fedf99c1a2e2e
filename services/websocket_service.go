package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/metrics"
	"taskdesk/taskdesk/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	HandleConnection(c *gin.Context, userID uint)
	SendToUser(userID uint, message *models.StandardMessage)
	ConnectionCount(userID uint) int
	Stop()
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID uint
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte
}

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WebSocketService keeps the live connections of each user. Clients only ever receive
// events about their own tasks.
type WebSocketService struct {
	clients      map[uint]map[string]*Client
	clientsMutex sync.RWMutex
	upgrader     websocket.Upgrader
	stopped      bool
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients: make(map[uint]map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is checked by the CORS middleware in front of the route.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and registers the connection for userID.
func (ws *WebSocketService) HandleConnection(c *gin.Context, userID uint) {
	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		applog.Get().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Hub:    ws,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
	if !ws.register(client) {
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func (ws *WebSocketService) register(client *Client) bool {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()

	if ws.stopped {
		return false
	}
	if ws.clients[client.UserID] == nil {
		ws.clients[client.UserID] = make(map[string]*Client)
	}
	ws.clients[client.UserID][client.ID] = client
	metrics.WebSocketConnections.Inc()
	applog.Get().Debug().Str("client_id", client.ID).Uint("user_id", client.UserID).Msg("websocket client connected")
	return true
}

func (ws *WebSocketService) unregister(client *Client) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	ws.removeLocked(client)
}

// removeLocked must be called with clientsMutex held.
func (ws *WebSocketService) removeLocked(client *Client) {
	userClients, ok := ws.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client.ID]; !ok {
		return
	}
	delete(userClients, client.ID)
	if len(userClients) == 0 {
		delete(ws.clients, client.UserID)
	}
	close(client.Send)
	metrics.WebSocketConnections.Dec()
	applog.Get().Debug().Str("client_id", client.ID).Msg("websocket client disconnected")
}

// SendToUser queues a message on every connection of userID. Slow clients whose buffer
// is full are dropped.
func (ws *WebSocketService) SendToUser(userID uint, message *models.StandardMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		applog.Get().Error().Err(err).Msg("failed to encode websocket message")
		return
	}

	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()

	for _, client := range ws.clients[userID] {
		select {
		case client.Send <- data:
		default:
			applog.Get().Warn().Str("client_id", client.ID).Msg("websocket send buffer full, removing client")
			ws.removeLocked(client)
		}
	}
}

func (ws *WebSocketService) ConnectionCount(userID uint) int {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	return len(ws.clients[userID])
}

// Stop closes every connection and refuses new ones.
func (ws *WebSocketService) Stop() {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()

	if ws.stopped {
		return
	}
	ws.stopped = true
	for _, userClients := range ws.clients {
		for _, client := range userClients {
			ws.removeLocked(client)
		}
	}
	applog.Get().Info().Msg("websocket service stopped")
}

// readPump handles incoming messages from the WebSocket client
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				applog.Get().Warn().Err(err).Str("client_id", c.ID).Msg("websocket read error")
			}
			break
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage answers keepalives. Clients cannot write tasks over the socket.
func (c *Client) processMessage(msg []byte) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(msg, &clientMsg); err != nil {
		applog.Get().Debug().Err(err).Str("client_id", c.ID).Msg("unparseable websocket message")
		return
	}

	switch clientMsg.Type {
	case "ping":
		c.reply(models.NewStandardMessage(models.PongMessage, "pong", json.RawMessage(`{}`)))
	default:
		errPayload, _ := json.Marshal(map[string]string{"message": "unsupported message type"})
		c.reply(models.NewStandardMessage(models.ErrorMessage, clientMsg.Type, errPayload))
	}
}

// reply queues a message on this connection only. It is dropped when the client is
// already unregistered or its buffer is full.
func (c *Client) reply(message *models.StandardMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	c.Hub.clientsMutex.RLock()
	defer c.Hub.clientsMutex.RUnlock()
	if _, ok := c.Hub.clients[c.UserID][c.ID]; ok {
		select {
		case c.Send <- data:
		default:
		}
	}
}

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// Client is one websocket subscriber.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub broadcasts account updates and rejections to every connected
// websocket client. It implements usecase.Notifier so the sequencer can
// feed it directly.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("websocket client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("websocket client disconnected", zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

type wsMessage struct {
	Type      string              `json:"type"` // account.updated, event.rejected
	TxType    domain.EventType    `json:"tx_type"`
	Client    domain.ClientID     `json:"client"`
	Tx        domain.TxID         `json:"tx"`
	Reason    domain.Reason       `json:"reason,omitempty"`
	Account   *domain.AccountView `json:"account,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

func (h *Hub) publish(msg wsMessage) {
	msg.Timestamp = time.Now().Unix()

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("websocket marshal failed", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("websocket broadcast buffer full, dropping update")
	}
}

// EventApplied broadcasts the refreshed account view.
func (h *Hub) EventApplied(ctx context.Context, ev domain.Event, view domain.AccountView) {
	h.publish(wsMessage{
		Type:    "account.updated",
		TxType:  ev.Type,
		Client:  ev.Client,
		Tx:      ev.Tx,
		Account: &view,
	})
}

// EventRejected broadcasts the rejection.
func (h *Hub) EventRejected(ctx context.Context, ev domain.Event, reason domain.Reason) {
	h.publish(wsMessage{
		Type:   "event.rejected",
		TxType: ev.Type,
		Client: ev.Client,
		Tx:     ev.Tx,
		Reason: reason,
	})
}

// ServeWS upgrades the request and registers the connection with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 256), hub: h}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; its job is to notice the close.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

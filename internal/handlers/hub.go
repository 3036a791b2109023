package handlers

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"classdraw/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one connected administrator dashboard.
type Client struct {
	Hub      *ResultsHub
	Conn     *websocket.Conn
	Outgoing chan []byte
}

// ResultsHub fans new lottery records out to connected websocket clients.
// All client bookkeeping happens on the Run goroutine.
type ResultsHub struct {
	clients map[*Client]bool
	count   int64

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	done chan struct{}
}

// NewResultsHub creates a hub. Call Run before publishing.
func NewResultsHub() *ResultsHub {
	return &ResultsHub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled.
func (h *ResultsHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.Register:
			h.clients[c] = true
			atomic.AddInt64(&h.count, 1)
		case c := <-h.Unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case msg := <-h.Broadcast:
			for c := range h.clients {
				select {
				case c.Outgoing <- msg:
				default:
					logger.Warningf("Dropping slow results client %s", c.Conn.RemoteAddr())
					h.drop(c)
				}
			}
		}
	}
}

func (h *ResultsHub) drop(c *Client) {
	delete(h.clients, c)
	close(c.Outgoing)
	atomic.AddInt64(&h.count, -1)
}

// ClientCount returns the number of registered clients.
func (h *ResultsHub) ClientCount() int {
	return int(atomic.LoadInt64(&h.count))
}

// Publish queues record for every client. It never blocks; records are
// dropped when the queue is full.
func (h *ResultsHub) Publish(record models.LotteryRecord) {
	msg, err := json.Marshal(record)
	if err != nil {
		logger.Errorf("Error encoding record %s: %v", record.ID, err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		logger.Warningf("Results feed full, dropping record %s", record.ID)
	}
}

// ServeWS upgrades the request and streams records until the client leaves.
func (h *ResultsHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("Error upgrading results websocket: %v", err)
		return
	}

	client := &Client{Hub: h, Conn: conn, Outgoing: make(chan []byte, 16)}
	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for msg := range c.Outgoing {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards inbound messages and unregisters on disconnect.
func (c *Client) readPump() {
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case c.Hub.Unregister <- c:
	case <-c.Hub.done:
	}
}

package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"tush00nka/taskboard/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"pkt.systems/pslog"
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4 * 1024
	maxSendChannelSize = 64
)

// Metrics counts hub activity.
type Metrics struct {
	Connections atomic.Int64
	EventsSent  atomic.Int64
	Dropped     atomic.Int64
}

// Hub fans attachment events out to the websocket clients watching a task.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[uint]*room
	logger  pslog.Logger
	metrics Metrics
	closed  bool
}

func NewHub(logger pslog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uint]*room),
		logger: logger.With("component", "ws.hub"),
	}
}

type room struct {
	taskID  uint
	clients map[*Client]struct{}
}

// Client is one websocket connection subscribed to a task.
type Client struct {
	hub    *Hub
	taskID uint
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

// Join subscribes conn to taskID and starts its read and write loops. The
// connection is closed when the peer goes away or the hub shuts down.
func (h *Hub) Join(taskID uint, conn *websocket.Conn) (*Client, error) {
	c := &Client{
		hub:    h,
		taskID: taskID,
		conn:   conn,
		send:   make(chan []byte, maxSendChannelSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("hub is shut down")
	}
	r, ok := h.rooms[taskID]
	if !ok {
		r = &room{taskID: taskID, clients: make(map[*Client]struct{})}
		h.rooms[taskID] = r
	}
	r.clients[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.Connections.Inc()
	h.logger.Debug("ws.client.joined", "task_id", taskID)

	go c.writePump()
	go c.readPump()
	return c, nil
}

// leave drops c from its room, removing the room when it empties.
func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	if r, ok := h.rooms[c.taskID]; ok {
		if _, member := r.clients[c]; member {
			delete(r.clients, c)
			h.metrics.Connections.Dec()
		}
		if len(r.clients) == 0 {
			delete(h.rooms, c.taskID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Publish sends the event to every client of the task. Clients whose send
// buffer is full are disconnected rather than blocking the publisher.
func (h *Hub) Publish(_ context.Context, event model.AttachmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("hub: failed to marshal event: %w", err)
	}

	var slow []*Client
	h.mu.RLock()
	if r, ok := h.rooms[event.TaskID]; ok {
		for c := range r.clients {
			select {
			case c.send <- data:
				h.metrics.EventsSent.Inc()
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.metrics.Dropped.Inc()
		h.logger.Warn("ws.client.dropped", "task_id", c.taskID)
		h.leave(c)
	}
	return nil
}

// Subscribers returns the number of clients watching taskID.
func (h *Hub) Subscribers(taskID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[taskID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) Stats() *Metrics {
	return &h.metrics
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var clients []*Client
	for _, r := range h.rooms {
		for c := range r.clients {
			clients = append(clients, c)
		}
	}
	h.rooms = make(map[uint]*room)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// readPump discards client messages; it only exists to process control
// frames and notice disconnects.
func (c *Client) readPump() {
	defer c.hub.leave(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws.client.read_error", "task_id", c.taskID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

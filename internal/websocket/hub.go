package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
)

// Client is one websocket session. A customer or admin may hold
// several at once (multiple tabs, phone plus desktop).
type Client struct {
	Hub       *Hub
	Conn      *Conn
	AccountID uint
	Role      string

	// Buffered outbound queue. The hub never blocks on a slow client;
	// when the queue fills the session is dropped instead.
	Send chan []byte

	// Rate limiting
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Event is the envelope for everything pushed to clients.
type Event struct {
	Type    string         `json:"type"`
	UserID  uint           `json:"user_id,omitempty"`
	Message *model.Message `json:"message,omitempty"`
}

// ClientMessage is what clients may send upstream. Only typing
// indicators; actual messages go through the REST API.
type ClientMessage struct {
	Type   string `json:"type"` // typing_start, typing_stop
	UserID uint   `json:"user_id,omitempty"`
}

// Hub routes inbox events to connected sessions. A customer only sees
// their own conversation; every admin session sees all of them.
type Hub struct {
	// AccountID -> sessions, customers and admins kept apart because
	// the two ID spaces overlap.
	customers map[uint][]*Client
	admins    map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	events     chan *Event

	mu sync.RWMutex
}

// NewHub creates a Hub. Call Run in its own goroutine before use.
func NewHub() *Hub {
	return &Hub{
		customers:  make(map[uint][]*Client),
		admins:     make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		events:     make(chan *Event, 1024),
	}
}

// Run processes registrations and event fan-out.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			pool := h.poolFor(client)
			pool[client.AccountID] = append(pool[client.AccountID], client)
			sessions := len(pool[client.AccountID])
			h.mu.Unlock()

			logger.Info("WebSocket client registered", map[string]interface{}{
				"account_id":     client.AccountID,
				"role":           client.Role,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			pool := h.poolFor(client)
			if sessions, ok := pool[client.AccountID]; ok {
				newList := make([]*Client, 0, len(sessions))
				for _, c := range sessions {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(pool, client.AccountID)
				} else {
					pool[client.AccountID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()

			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"account_id": client.AccountID,
				"role":       client.Role,
			})

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) poolFor(client *Client) map[uint][]*Client {
	if client.Role == model.RoleAdmin {
		return h.admins
	}
	return h.customers
}

// Register adds a client session.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client session and closes its send queue.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyNewMessage pushes a stored message to the customer's sessions
// and to every connected admin. It never blocks the caller: when the
// event queue is full the push is dropped and clients catch up over
// the REST API.
func (h *Hub) NotifyNewMessage(message *model.Message) {
	event := &Event{
		Type:    "message",
		UserID:  message.UserID,
		Message: message,
	}

	select {
	case h.events <- event:
	default:
		logger.Warn("Event queue full, push dropped", map[string]interface{}{
			"user_id":    message.UserID,
			"message_id": message.ID,
		})
	}
}

// dispatch fans an event out to the customer it concerns and to all
// admin sessions.
func (h *Hub) dispatch(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, nil)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, 8)
	targets = append(targets, h.customers[event.UserID]...)
	for _, sessions := range h.admins {
		targets = append(targets, sessions...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, data)
	}
}

// deliver queues data for one session without blocking. A session
// whose buffer is full gets disconnected.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		go h.Unregister(client)
		logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
			"account_id": client.AccountID,
			"role":       client.Role,
		})
	}
}

// IsUserOnline reports whether a customer has at least one open session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.customers[userID]
	return ok
}

// OnlineAdminCount returns the number of connected admin sessions.
func (h *Hub) OnlineAdminCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, sessions := range h.admins {
		count += len(sessions)
	}
	return count
}

// HandleClientMessage processes an upstream frame. An admin's typing
// indicator goes to the customer whose thread they are typing in, a
// customer's goes to every admin.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"account_id": client.AccountID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"account_id": client.AccountID,
			"error":      err.Error(),
		})
		return
	}

	if msg.Type == "typing_start" || msg.Type == "typing_stop" {
		h.relayTyping(client, msg)
	}
}

func (h *Hub) relayTyping(client *Client, msg ClientMessage) {
	userID := msg.UserID
	if client.Role != model.RoleAdmin {
		// Customers can only type in their own thread.
		userID = client.AccountID
	}
	if userID == 0 {
		return
	}

	data, err := json.Marshal(&Event{Type: msg.Type, UserID: userID})
	if err != nil {
		logger.Error("Failed to marshal typing event", err, nil)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, 8)
	if client.Role == model.RoleAdmin {
		targets = append(targets, h.customers[userID]...)
	} else {
		for _, sessions := range h.admins {
			targets = append(targets, sessions...)
		}
	}
	h.mu.RUnlock()

	for _, target := range targets {
		if target == client {
			continue
		}
		h.deliver(target, data)
	}
}

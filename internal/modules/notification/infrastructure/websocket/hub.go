package websocket

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UnicastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub tracks live connections per user and delivers pushed messages to them.
// All map access happens on the Run goroutine.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	broadcast  chan []byte
	unicast    chan UnicastMessage
	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan []byte),
		unicast:    make(chan UnicastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) add(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("websocket client too slow, dropping", zap.String("user_id", c.userID.String()))
		h.remove(c)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.add(c)
			h.logger.Debug("websocket client registered", zap.String("user_id", c.userID.String()))
		case c := <-h.unregister:
			h.remove(c)
			h.logger.Debug("websocket client unregistered", zap.String("user_id", c.userID.String()))
		case msg := <-h.broadcast:
			for _, set := range h.clients {
				for c := range set {
					h.deliver(c, msg)
				}
			}
		case msg := <-h.unicast:
			for c := range h.clients[msg.UserID] {
				h.deliver(c, msg.Message)
			}
		case <-h.stop:
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.logger.Info("websocket hub stopped")
			return
		}
	}
}

func (h *Hub) BroadcastMessage(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.stop:
	}
}

func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	select {
	case h.unicast <- UnicastMessage{UserID: userID, Message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

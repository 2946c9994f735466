package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/gofiber/contrib/websocket"
)

// Hub fans notification events out to connected clients.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
	}
}

// PublishNotification pushes a notification event to all clients. Delivery is
// best-effort: the durable copy already lives in the notifications table.
func (h *Hub) PublishNotification(n *model.Notification) {
	payload := map[string]interface{}{
		"type":              "notification",
		"notification_type": n.Type,
		"to_user_id":        n.ToUserID,
		"from_user_id":      n.FromUserID,
		"kandang_id":        n.KandangID,
		"message":           n.Message,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	go func() { h.Broadcast <- msg }()
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

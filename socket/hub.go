package socket

import (
	"encoding/json"
	"errors"
	"sync"

	"sitedata/notify"
	"sitedata/pkg/logger"
)

// AllDocuments subscribes a connection to announcements for every
// document instead of a single room.
const AllDocuments = "*"

// Hub fans document-change announcements out to connected websocket
// clients. Clients join the room for one document name (or AllDocuments)
// and only ever receive; there is no inbound message protocol.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan notify.Event
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan notify.Event, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Signal queues an announcement for fan-out. It satisfies
// notify.RemoteSignaler and never blocks the announcing write; when the
// queue is full the event is dropped and subscribers recover on their
// fallback timers.
func (h *Hub) Signal(ev notify.Event) error {
	select {
	case h.Broadcast <- ev:
		return nil
	default:
		return errors.New("hub broadcast queue is full")
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Room] == nil {
				h.Rooms[client.Room] = make(map[*Client]bool)
			}
			h.Rooms[client.Room][client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Client %s joined room %s", client.ID, client.Room)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.Room][client]; ok {
				delete(h.Rooms[client.Room], client)
				close(client.Send)
				if len(h.Rooms[client.Room]) == 0 {
					delete(h.Rooms, client.Room)
					logger.Sugar.Infof("Closed empty room: %s", client.Room)
				}
			}
			h.mu.Unlock()

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside it.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[ev.Name])+len(h.Rooms[AllDocuments]))
			for client := range h.Rooms[ev.Name] {
				clientsToSend = append(clientsToSend, client)
			}
			for client := range h.Rooms[AllDocuments] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// If the send buffer is full, the client is lagging.
					// Unregister the client to prevent blocking the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.ID)
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
		}
	}
}

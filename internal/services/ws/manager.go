// Package ws implements the optional live fleet feed: a broadcast hub fed
// from the position write path, so map viewers can subscribe instead of
// polling GET /api/location/shared. The polling endpoints stay the primary
// contract; this feed carries the same fleet snapshots.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wasteline/fleet_backendl/internal/metrics"
	"github.com/wasteline/fleet_backendl/internal/models"
)

// FleetSource supplies the snapshot broadcast to feed clients.
// *location.Service satisfies it.
type FleetSource interface {
	GetAllShared(ctx context.Context) (*models.FleetResponse, error)
}

type Manager struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	source     FleetSource
	metrics    *metrics.Metrics
	mu         sync.RWMutex
}

func NewManager(source FleetSource, m *metrics.Metrics) *Manager {
	manager := &Manager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		source:     source,
		metrics:    m,
	}
	go manager.Run()
	return manager
}

func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}

func (m *Manager) Broadcast(message []byte) {
	m.broadcast <- message
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			m.metrics.FeedClients.Set(float64(len(m.clients)))
			m.mu.Unlock()
			// New viewers get a snapshot right away instead of waiting
			// for the next driver report.
			m.FleetChanged()
		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.Send)
			}
			m.metrics.FeedClients.Set(float64(len(m.clients)))
			m.mu.Unlock()
		case message := <-m.broadcast:
			m.mu.Lock()
			for client := range m.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(m.clients, client)
				}
			}
			m.metrics.FeedClients.Set(float64(len(m.clients)))
			m.mu.Unlock()
		}
	}
}

// FleetChanged implements location.FleetListener: it is called after every
// accepted position write and pushes a fresh fleet snapshot to all clients.
func (m *Manager) FleetChanged() {
	m.mu.RLock()
	idle := len(m.clients) == 0
	m.mu.RUnlock()
	if idle {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		fleet, err := m.source.GetAllShared(ctx)
		if err != nil {
			log.Printf("Fleet feed snapshot failed: %v", err)
			return
		}

		data, _ := json.Marshal(map[string]interface{}{
			"type":      "fleet",
			"sharing":   fleet.Sharing,
			"drivers":   fleet.Drivers,
			"timestamp": time.Now().UTC(),
		})
		m.Broadcast(data)
	}()
}

func (m *Manager) ReadPump(client *Client) {
	defer func() {
		m.Unregister(client)
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
		// Feed clients have nothing to say; drain and ignore.
	}
}

func (m *Manager) WritePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			client.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			client.Conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

package location

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wasteline/fleet_backendl/internal/services/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler handles GET /api/location/ws: upgrades the viewer connection
// and subscribes it to fleet snapshots. Like the polling reads, the feed is
// public.
func FeedHandler(manager *ws.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("Upgrade error:", err)
			return
		}

		client := ws.NewClient(conn)
		manager.Register(client)

		go manager.ReadPump(client)
		go manager.WritePump(client)
	}
}

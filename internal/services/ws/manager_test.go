package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteline/fleet_backendl/internal/metrics"
	"github.com/wasteline/fleet_backendl/internal/models"
)

type fakeFleetSource struct {
	mu    sync.Mutex
	fleet *models.FleetResponse
	err   error
	calls int
}

func (f *fakeFleetSource) GetAllShared(_ context.Context) (*models.FleetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fleet, nil
}

func (f *fakeFleetSource) set(fleet *models.FleetResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fleet = fleet
}

type fleetMessage struct {
	Type    string                `json:"type"`
	Sharing bool                  `json:"sharing"`
	Drivers []models.SharedDriver `json:"drivers"`
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func dialFeed(t *testing.T, m *Manager) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		client := NewClient(conn)
		m.Register(client)
		go m.ReadPump(client)
		go m.WritePump(client)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFleet(t *testing.T, conn *websocket.Conn) fleetMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg fleetMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeedSnapshotOnRegisterAndWrite(t *testing.T) {
	source := &fakeFleetSource{fleet: &models.FleetResponse{
		Sharing: true,
		Drivers: []models.SharedDriver{{DriverID: "drv-a", Name: "Ram Thapa", Sharing: true}},
	}}
	manager := NewManager(source, metrics.New(prometheus.NewRegistry()))

	conn := dialFeed(t, manager)

	// A new viewer gets a snapshot right away.
	msg := readFleet(t, conn)
	assert.Equal(t, "fleet", msg.Type)
	assert.True(t, msg.Sharing)
	require.Len(t, msg.Drivers, 1)
	assert.Equal(t, "drv-a", msg.Drivers[0].DriverID)

	// An accepted write notifies the hub; the viewer sees the new fleet.
	source.set(&models.FleetResponse{
		Sharing: true,
		Drivers: []models.SharedDriver{
			{DriverID: "drv-b", Name: "Sita Rai", Sharing: true},
			{DriverID: "drv-a", Name: "Ram Thapa", Sharing: true},
		},
	})
	manager.FleetChanged()

	msg = readFleet(t, conn)
	require.Len(t, msg.Drivers, 2)
	assert.Equal(t, "drv-b", msg.Drivers[0].DriverID)
}

func TestFeedSnapshotFailureIsDropped(t *testing.T) {
	source := &fakeFleetSource{err: errors.New("connection refused")}
	manager := NewManager(source, metrics.New(prometheus.NewRegistry()))

	conn := dialFeed(t, manager)

	// The failed snapshot is dropped, not sent; FleetChanged itself must
	// return without blocking the caller (the position write path).
	start := time.Now()
	manager.FleetChanged()
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timeout"))

	// The hub is still healthy once the source recovers.
	source.mu.Lock()
	source.err = nil
	source.fleet = &models.FleetResponse{Sharing: false, Drivers: []models.SharedDriver{}}
	source.mu.Unlock()
	manager.FleetChanged()

	// Reconnect: the read deadline above poisoned the old connection.
	conn2 := dialFeed(t, manager)
	msg := readFleet(t, conn2)
	assert.Equal(t, "fleet", msg.Type)
	assert.False(t, msg.Sharing)
}

func TestFeedChangedWithNoClients(t *testing.T) {
	source := &fakeFleetSource{}
	manager := NewManager(source, metrics.New(prometheus.NewRegistry()))

	// No clients connected: no snapshot is taken at all.
	manager.FleetChanged()
	time.Sleep(20 * time.Millisecond)

	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Zero(t, source.calls)
}

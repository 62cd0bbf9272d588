package client

import (
	"context"
	"reflect"
	"time"

	"github.com/wasteline/fleet_backendl/internal/models"
)

// DefaultPollInterval matches the cadence the map screens poll at.
const DefaultPollInterval = 1500 * time.Millisecond

// Poller runs the viewer-side loop: a fixed-interval fetch of the fleet view
// (or of one tracked driver) with structural de-duplication, so the UI only
// re-renders when the picture actually changed. A failed tick keeps the
// last-known-good data and retries on the next tick.
type Poller struct {
	client   *Client
	interval time.Duration
	driverID string

	// OnFleet fires when the fleet view changed; OnDriver likewise in
	// single-driver mode. OnError fires once per failing tick.
	OnFleet  func(*models.FleetResponse)
	OnDriver func(*models.DriverLocationResponse)
	OnError  func(error)

	lastFleet  *models.FleetResponse
	lastDriver *models.DriverLocationResponse
}

func NewPoller(client *Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: client, interval: interval}
}

// TrackDriver switches the poller to single-driver mode. Must be called
// before Run.
func (p *Poller) TrackDriver(driverID string) {
	p.driverID = driverID
}

// Run polls until ctx is canceled: one immediate fetch, then every interval.
// The timer keeps ticking whether or not the data changed.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if p.driverID != "" {
		p.pollDriver(ctx)
		return
	}
	p.pollFleet(ctx)
}

func (p *Poller) pollFleet(ctx context.Context) {
	fleet, err := p.client.AllShared(ctx)
	if err != nil {
		p.fail(err)
		return
	}
	if reflect.DeepEqual(p.lastFleet, fleet) {
		return
	}
	p.lastFleet = fleet
	if p.OnFleet != nil {
		p.OnFleet(fleet)
	}
}

func (p *Poller) pollDriver(ctx context.Context) {
	resp, err := p.client.DriverLocation(ctx, p.driverID)
	if err != nil {
		p.fail(err)
		return
	}
	if reflect.DeepEqual(p.lastDriver, resp) {
		return
	}
	p.lastDriver = resp
	if p.OnDriver != nil {
		p.OnDriver(resp)
	}
}

func (p *Poller) fail(err error) {
	// Last-known-good data stays; the next tick retries.
	if p.OnError != nil {
		p.OnError(err)
	}
}

package client

import (
	"context"
	"errors"
	"log"
)

// Fix is one device position fix.
type Fix struct {
	Latitude  float64
	Longitude float64
}

// LocationWatcher is the device location capability. It is fallible and
// revocable: Watch fails when permission is denied, and the fix channel
// closes when the platform withdraws the watch.
type LocationWatcher interface {
	Watch(ctx context.Context) (<-chan Fix, error)
}

var (
	// ErrNoFix means sharing was requested before the first position fix.
	ErrNoFix = errors.New("no position fix yet")
	// ErrWatchRevoked means the location watch was withdrawn mid-session.
	ErrWatchRevoked = errors.New("location watch revoked")
)

// Reporter runs the driver-side reporting loop. While sharing, every new fix
// is reported immediately; toggling sharing on sends one report with the last
// fix, toggling it off sends exactly one report with the sharing flag down so
// the server can flip it without a fresh fix. Nothing is sent before the
// first fix arrives.
type Reporter struct {
	client  *Client
	watcher LocationWatcher
	toggle  chan bool
	done    chan struct{}
	onError func(error)
}

// NewReporter creates a reporter. onError is invoked for transient report
// failures and for sharing requests made before a fix; nil logs instead.
func NewReporter(client *Client, watcher LocationWatcher, onError func(error)) *Reporter {
	if onError == nil {
		onError = func(err error) { log.Printf("Location report: %v", err) }
	}
	return &Reporter{
		client:  client,
		watcher: watcher,
		toggle:  make(chan bool),
		done:    make(chan struct{}),
		onError: onError,
	}
}

// SetSharing requests a sharing-state change. Blocks until the running loop
// picks it up; returns false once the loop has exited.
func (r *Reporter) SetSharing(sharing bool) bool {
	select {
	case r.toggle <- sharing:
		return true
	case <-r.done:
		return false
	}
}

// Run drives the loop until ctx is canceled or the watch is revoked. The
// watch is released on every exit path by canceling ctx.
func (r *Reporter) Run(ctx context.Context) error {
	defer close(r.done)

	fixes, err := r.watcher.Watch(ctx)
	if err != nil {
		return err
	}

	var lastFix *Fix
	sharing := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case fix, ok := <-fixes:
			if !ok {
				return ErrWatchRevoked
			}
			lastFix = &fix
			if sharing {
				r.report(ctx, fix, true)
			}

		case next := <-r.toggle:
			if next == sharing {
				continue
			}
			if next && lastFix == nil {
				// Still waiting for the first GPS lock; stay not sharing.
				r.onError(ErrNoFix)
				continue
			}
			sharing = next
			if lastFix != nil {
				r.report(ctx, *lastFix, next)
			}
		}
	}
}

func (r *Reporter) report(ctx context.Context, fix Fix, sharing bool) {
	if _, err := r.client.ShareLocation(ctx, fix.Latitude, fix.Longitude, sharing); err != nil {
		// Transient: the next fix or toggle retries naturally.
		r.onError(err)
	}
}

package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/wasteline/fleet_backendl/internal/geo"
	"github.com/wasteline/fleet_backendl/internal/metrics"
	"github.com/wasteline/fleet_backendl/internal/models"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrDriverNotFound     = errors.New("driver not found")
	// ErrStorage marks transient storage failures; callers may retry on
	// their next tick.
	ErrStorage = errors.New("storage unavailable")
)

// DriverProfiles is the slice of the profile store the location service
// needs. *repositories.DriverRepository satisfies it.
type DriverProfiles interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
}

// FleetListener is notified after every accepted position write. The
// websocket feed hub implements it; nil disables notifications.
type FleetListener interface {
	FleetChanged()
}

type Service struct {
	store      PositionStore
	drivers    DriverProfiles
	staleAfter time.Duration
	metrics    *metrics.Metrics
	listener   FleetListener
	now        func() time.Time
}

func NewService(store PositionStore, drivers DriverProfiles, staleAfter time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		store:      store,
		drivers:    drivers,
		staleAfter: staleAfter,
		metrics:    m,
		now:        time.Now,
	}
}

// SetListener attaches the fleet change listener. Must be called before the
// service starts taking requests.
func (s *Service) SetListener(l FleetListener) {
	s.listener = l
}

// Share validates and commits one driver position report. The driver id
// comes from the verified caller identity; name and vehicle number are
// denormalized from the profile so the polling reads never touch postgres.
func (s *Service) Share(ctx context.Context, driverID string, lat, lon float64, sharing bool) (*models.DriverPosition, error) {
	if !geo.ValidPair(lat, lon) {
		s.metrics.LocationUpdates.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCoordinates
	}

	profile, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.LocationUpdates.WithLabelValues("rejected").Inc()
			return nil, ErrDriverNotFound
		}
		s.metrics.LocationUpdates.WithLabelValues("error").Inc()
		log.Printf("Driver profile lookup failed: %v", err)
		return nil, fmt.Errorf("%w: profile lookup", ErrStorage)
	}

	pos := &models.DriverPosition{
		DriverID:      driverID,
		Name:          profile.Name,
		VehicleNumber: profile.VehicleNumber,
		Coordinates:   [2]float64{lon, lat},
		SharingActive: sharing,
		LastUpdatedAt: s.now().UTC(),
	}

	if err := s.store.SavePosition(ctx, pos); err != nil {
		s.metrics.LocationUpdates.WithLabelValues("error").Inc()
		log.Printf("Failed to save position for driver %s: %v", driverID, err)
		return nil, fmt.Errorf("%w: position save", ErrStorage)
	}

	s.metrics.LocationUpdates.WithLabelValues("accepted").Inc()
	if s.listener != nil {
		s.listener.FleetChanged()
	}
	return pos, nil
}

// GetDriver answers the single-driver read. A driver with no position record
// but an existing profile reads as not sharing; no profile at all is
// not-found. Once sharing is off the stored coordinates are not surfaced.
func (s *Service) GetDriver(ctx context.Context, driverID string) (*models.DriverLocationResponse, error) {
	pos, err := s.store.GetPosition(ctx, driverID)
	if errors.Is(err, ErrPositionNotFound) {
		if _, err := s.drivers.GetByID(ctx, driverID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrDriverNotFound
			}
			log.Printf("Driver profile lookup failed: %v", err)
			return nil, fmt.Errorf("%w: profile lookup", ErrStorage)
		}
		return &models.DriverLocationResponse{Sharing: false, DriverID: driverID}, nil
	}
	if err != nil {
		log.Printf("Failed to read position for driver %s: %v", driverID, err)
		return nil, fmt.Errorf("%w: position read", ErrStorage)
	}

	if !pos.SharingActive {
		return &models.DriverLocationResponse{Sharing: false, DriverID: driverID}, nil
	}

	resp := &models.DriverLocationResponse{Sharing: true, DriverID: driverID}
	if !geo.IsSentinel(pos.Longitude(), pos.Latitude()) {
		resp.Location = &models.LatLng{Latitude: pos.Latitude(), Longitude: pos.Longitude()}
		updatedAt := pos.LastUpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp, nil
}

// GetLatestShared returns the most recently updated currently-sharing driver.
func (s *Service) GetLatestShared(ctx context.Context) (*models.LatestSharedResponse, error) {
	shared, err := s.currentlyShared(ctx)
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return &models.LatestSharedResponse{Sharing: false}, nil
	}

	latest := shared[0]
	updatedAt := latest.LastUpdatedAt
	return &models.LatestSharedResponse{
		Sharing:       true,
		DriverID:      latest.DriverID,
		Name:          latest.Name,
		VehicleNumber: latest.VehicleNumber,
		Location:      &models.LatLng{Latitude: latest.Latitude(), Longitude: latest.Longitude()},
		UpdatedAt:     &updatedAt,
	}, nil
}

// GetAllShared returns the fleet view: every currently-sharing driver,
// most recent first.
func (s *Service) GetAllShared(ctx context.Context) (*models.FleetResponse, error) {
	shared, err := s.currentlyShared(ctx)
	if err != nil {
		return nil, err
	}

	drivers := make([]models.SharedDriver, 0, len(shared))
	for _, pos := range shared {
		drivers = append(drivers, models.SharedDriver{
			DriverID:      pos.DriverID,
			Name:          pos.Name,
			VehicleNumber: pos.VehicleNumber,
			Sharing:       true,
			Location:      models.LatLng{Latitude: pos.Latitude(), Longitude: pos.Longitude()},
			UpdatedAt:     pos.LastUpdatedAt,
		})
	}

	s.metrics.SharingDrivers.Set(float64(len(drivers)))
	return &models.FleetResponse{Sharing: len(drivers) > 0, Drivers: drivers}, nil
}

// currentlyShared applies the sharing policy and returns matching records
// sorted by LastUpdatedAt descending. "Currently sharing" means the flag is
// set, the coordinates are real, and the record is fresh enough.
func (s *Service) currentlyShared(ctx context.Context) ([]*models.DriverPosition, error) {
	positions, err := s.store.GetAllPositions(ctx)
	if err != nil {
		log.Printf("Failed to read fleet positions: %v", err)
		return nil, fmt.Errorf("%w: fleet read", ErrStorage)
	}

	now := s.now()
	var shared []*models.DriverPosition
	for _, pos := range positions {
		if !pos.SharingActive {
			continue
		}
		if geo.IsSentinel(pos.Longitude(), pos.Latitude()) {
			// Flagged sharing but never actually positioned.
			continue
		}
		if s.staleAfter > 0 && now.Sub(pos.LastUpdatedAt) > s.staleAfter {
			continue
		}
		shared = append(shared, pos)
	}

	sort.Slice(shared, func(i, j int) bool {
		return shared[i].LastUpdatedAt.After(shared[j].LastUpdatedAt)
	})
	return shared, nil
}

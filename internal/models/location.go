package models

import "time"

// DriverPosition is the live position record, one per driver, stored under
// driver:location:<id>. Coordinates are [longitude, latitude]; the zero pair
// means the driver has never reported a real fix. The record is a full
// overwrite on every accepted report and survives the driver turning
// sharing off.
type DriverPosition struct {
	DriverID      string     `json:"driver_id"`
	Name          string     `json:"name"`
	VehicleNumber string     `json:"vehicle_number"`
	Coordinates   [2]float64 `json:"coordinates"`
	SharingActive bool       `json:"sharing_active"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

// Longitude and Latitude unpack the coordinates pair.
func (p *DriverPosition) Longitude() float64 { return p.Coordinates[0] }
func (p *DriverPosition) Latitude() float64  { return p.Coordinates[1] }

// LatLng is the client-facing coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ShareRequest is the body of POST /api/location/share. Latitude and
// longitude are pointers so a missing field is distinguishable from zero;
// sharing defaults to true when absent.
type ShareRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Sharing   *bool    `json:"sharing"`
}

type ShareResponse struct {
	Success   bool      `json:"success"`
	Sharing   bool      `json:"sharing"`
	DriverID  string    `json:"driverId"`
	Location  LatLng    `json:"location"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DriverLocationResponse answers the single-driver read. Location is omitted
// when the driver is not sharing or has never reported a real fix.
type DriverLocationResponse struct {
	Sharing   bool       `json:"sharing"`
	DriverID  string     `json:"driverId"`
	Location  *LatLng    `json:"location,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// SharedDriver is one entry of the fleet view.
type SharedDriver struct {
	DriverID      string    `json:"driverId"`
	Name          string    `json:"name"`
	VehicleNumber string    `json:"vehicleNumber"`
	Sharing       bool      `json:"sharing"`
	Location      LatLng    `json:"location"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type LatestSharedResponse struct {
	Sharing       bool       `json:"sharing"`
	DriverID      string     `json:"driverId,omitempty"`
	Name          string     `json:"name,omitempty"`
	VehicleNumber string     `json:"vehicleNumber,omitempty"`
	Location      *LatLng    `json:"location,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

type FleetResponse struct {
	Sharing bool           `json:"sharing"`
	Drivers []SharedDriver `json:"drivers"`
}

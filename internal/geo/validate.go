// Package geo holds the coordinate validation rules shared by the location
// handlers and the client loops.
package geo

import "math"

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidLatitude reports whether v is a finite latitude in [-90, 90].
func ValidLatitude(v float64) bool {
	return finite(v) && v >= MinLatitude && v <= MaxLatitude
}

// ValidLongitude reports whether v is a finite longitude in [-180, 180].
func ValidLongitude(v float64) bool {
	return finite(v) && v >= MinLongitude && v <= MaxLongitude
}

// ValidPair reports whether both coordinates are valid. A single bad
// coordinate fails the whole pair.
func ValidPair(lat, lon float64) bool {
	return ValidLatitude(lat) && ValidLongitude(lon)
}

// IsSentinel reports whether the pair is the (0,0) placeholder meaning
// "no real position has ever been recorded".
func IsSentinel(lon, lat float64) bool {
	return lon == 0 && lat == 0
}

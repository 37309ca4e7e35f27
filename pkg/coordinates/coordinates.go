// Package coordinates provides the spherical-earth geodesy used to rank
// airports and aircraft by distance.
package coordinates

import (
	"fmt"
	"math"
)

// Constants for coordinate calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's mean radius in kilometers.
	// The flight-data provider computes entity distances with this radius,
	// so rankings stay numerically comparable with its own figures.
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts nautical miles to kilometers
	KmPerNauticalMile = 1.852
)

// Geographic represents a position on Earth's surface in WGS84 decimal degrees.
type Geographic struct {
	// Latitude in decimal degrees (-90 to +90)
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64
}

// Valid reports whether the point lies within latitude/longitude range.
func (g Geographic) Valid() bool {
	return !math.IsNaN(g.Latitude) && !math.IsNaN(g.Longitude) &&
		g.Latitude >= -90 && g.Latitude <= 90 &&
		g.Longitude >= -180 && g.Longitude <= 180
}

func (g Geographic) String() string {
	return fmt.Sprintf("%.4f,%.4f", g.Latitude, g.Longitude)
}

// ToRadians converts the Geographic coordinates to radians.
// Returns (latRad, lonRad).
func (g Geographic) ToRadians() (float64, float64) {
	return g.Latitude * DegreesToRadians, g.Longitude * DegreesToRadians
}

// NormalizeAzimuth ensures azimuth is in the range [0, 360).
func NormalizeAzimuth(azimuth float64) float64 {
	az := math.Mod(azimuth, 360.0)
	if az < 0 {
		az += 360.0
	}
	return az
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Returns bearing in degrees (0-360), where 0/360 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to Geographic) float64 {
	lat1, lon1 := from.ToRadians()
	lat2, lon2 := to.ToRadians()

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeAzimuth(math.Atan2(y, x) * RadiansToDegrees)
}

// DistanceKm calculates the great-circle distance between two points
// using the Haversine formula. Returns distance in kilometers.
func DistanceKm(from, to Geographic) float64 {
	lat1Rad, lon1Rad := from.ToRadians()
	lat2Rad, lon2Rad := to.ToRadians()

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

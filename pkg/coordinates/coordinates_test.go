package coordinates

import (
	"math"
	"testing"
)

var (
	ham = Geographic{Latitude: 53.6304, Longitude: 9.9882}
	fra = Geographic{Latitude: 50.0333, Longitude: 8.5706}
	jfk = Geographic{Latitude: 40.6398, Longitude: -73.7789}
)

// TestDistanceKm tests haversine distances against known airport pairs
func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name     string
		from, to Geographic
		want     float64
	}{
		{"Same point", ham, ham, 0},
		{"One degree on the equator", Geographic{0, 0}, Geographic{0, 1}, 111.195},
		{"HAM to FRA", ham, fra, 411.648},
		{"HAM to JFK", ham, jfk, 6117.970},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.from, tt.to)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("DistanceKm = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

// TestDistanceSymmetric tests that distance does not depend on direction
func TestDistanceSymmetric(t *testing.T) {
	if a, b := DistanceKm(ham, jfk), DistanceKm(jfk, ham); math.Abs(a-b) > 1e-9 {
		t.Errorf("Distance not symmetric: %f vs %f", a, b)
	}
}

// TestBearing tests initial bearing along cardinal directions
func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		from, to Geographic
		want     float64
	}{
		{"North", Geographic{0, 0}, Geographic{10, 0}, 0},
		{"East", Geographic{0, 0}, Geographic{0, 10}, 90},
		{"South", Geographic{10, 0}, Geographic{0, 0}, 180},
		{"West", Geographic{0, 10}, Geographic{0, 0}, 270},
	}

	for _, tt := range tests {
		got := Bearing(tt.from, tt.to)
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("%s: Bearing = %.4f, want %.4f", tt.name, got, tt.want)
		}
	}
}

// TestNormalizeAzimuth tests azimuth normalization
func TestNormalizeAzimuth(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{0.0, 0.0},
		{359.0, 359.0},
		{360.0, 0.0},
		{361.0, 1.0},
		{-1.0, 359.0},
		{-90.0, 270.0},
		{720.0, 0.0},
	}

	for _, tt := range tests {
		got := NormalizeAzimuth(tt.input)
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("NormalizeAzimuth(%.1f) = %.1f, want %.1f", tt.input, got, tt.want)
		}
	}
}

// TestValid tests range checking
func TestValid(t *testing.T) {
	if !ham.Valid() {
		t.Error("Expected HAM to be valid")
	}
	for _, g := range []Geographic{{91, 0}, {0, -181}, {math.NaN(), 0}} {
		if g.Valid() {
			t.Errorf("Expected %v to be invalid", g)
		}
	}
}

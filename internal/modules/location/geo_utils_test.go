package location

import (
	"math"
	"testing"

	"campd/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 8.4840, lng1: -13.2317,
			lat2: 8.4840, lng2: -13.2317,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name: "FBC to Lumley (~6.3km)",
			lat1: 8.4840, lng1: -13.2317,
			lat2: 8.4800, lng2: -13.2890,
			wantKm:    6.3,
			tolerance: 0.2,
		},
		{
			name: "New York to Los Angeles (~3944km)",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 34.0522, lng2: -118.2437,
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestVincentyKm_Reference(t *testing.T) {
	// Flinders Peak to Buninyong, the classic Vincenty worked example: 54972.271 m.
	got, ok := vincentyKm(-37.95103342, 144.42486789, -37.65282114, 143.92649554)
	if !ok {
		t.Fatalf("expected convergence")
	}
	if math.Abs(got-54.972271) > 0.001 {
		t.Errorf("vincentyKm() = %f, want 54.972271", got)
	}
}

func TestVincentyKm_CoincidentPoints(t *testing.T) {
	got, ok := vincentyKm(8.48, -13.289, 8.48, -13.289)
	if !ok || got != 0 {
		t.Errorf("vincentyKm() = %f, %v; want 0, true", got, ok)
	}
}

func TestDistanceKm_CloseToHaversineInCity(t *testing.T) {
	pairs := [][2]types.Point{
		{{Lat: 8.4840, Lng: -13.2317}, {Lat: 8.4800, Lng: -13.2890}},
		{{Lat: 8.3780, Lng: -13.1665}, {Lat: 8.5060, Lng: -13.2600}},
		{{Lat: 8.3942, Lng: -13.1510}, {Lat: 8.4900, Lng: -13.2830}},
	}
	for _, p := range pairs {
		ellipsoidal := DistanceKm(p[0], p[1])
		spherical := haversineKm(p[0].Lat, p[0].Lng, p[1].Lat, p[1].Lng)
		if rel := math.Abs(ellipsoidal-spherical) / ellipsoidal; rel > 0.005 {
			t.Errorf("%v -> %v: ellipsoidal %f vs haversine %f (rel %f)", p[0], p[1], ellipsoidal, spherical, rel)
		}
	}
}

func TestDistanceKm_NearAntipodalFallsBack(t *testing.T) {
	a := types.Point{Lat: 0, Lng: 0}
	b := types.Point{Lat: 0.5, Lng: 179.7}
	got := DistanceKm(a, b)
	if math.IsNaN(got) || got < 19000 || got > 20100 {
		t.Errorf("DistanceKm() = %f, want roughly half the circumference", got)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := types.Point{Lat: 8.4655, Lng: -13.2689}
	b := types.Point{Lat: 8.4700, Lng: -13.2000}
	d1 := DistanceKm(a, b)
	d2 := DistanceKm(b, a)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

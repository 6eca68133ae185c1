package geofence

import (
	"math"
	"testing"
)

const (
	siteLat = -3.69019
	siteLng = 33.41387
)

func f(v float64) *float64 { return &v }

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", siteLat, siteLng, siteLat, siteLng, 0, 0.001},
		// One degree of latitude is roughly 111.19 km on a 6371 km sphere.
		{"one degree latitude", 0, 0, 1, 0, 111195, 50},
		{"short hop", siteLat, siteLng, siteLat + 0.0005, siteLng, 55.6, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance = %.2f, want %.2f (±%.2f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestValidatorWithin(t *testing.T) {
	fence := New(siteLat, siteLng, 100)

	tests := []struct {
		name string
		lat  *float64
		lng  *float64
		want bool
	}{
		{"at center", f(siteLat), f(siteLng), true},
		// ~55m north of center, inside the 100m radius
		{"inside fence", f(siteLat + 0.0005), f(siteLng), true},
		// ~150m north of center, outside the 100m radius
		{"outside fence", f(siteLat + 0.00135), f(siteLng), false},
		{"far away", f(0.0), f(0.0), false},
		{"missing latitude", nil, f(siteLng), false},
		{"missing longitude", f(siteLat), nil, false},
		{"both missing", nil, nil, false},
		{"nan latitude", f(math.NaN()), f(siteLng), false},
		{"latitude out of range", f(91.0), f(siteLng), false},
		{"longitude out of range", f(siteLat), f(181.0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fence.Within(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Within = %v, want %v", got, tt.want)
			}
		})
	}
}

package geofence

import "math"

const earthRadiusMeters = 6371000

// Distance returns the great-circle distance between two coordinates in
// meters, using the haversine formula on a spherical earth.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Validator is a circular geofence around a work site.
type Validator struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

func New(lat, lng, radiusMeters float64) Validator {
	return Validator{Latitude: lat, Longitude: lng, RadiusMeters: radiusMeters}
}

// Within reports whether the claimed point falls inside the fence.
// Missing or non-numeric coordinates are rejected, never treated as inside.
func (v Validator) Within(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	if math.IsNaN(*lat) || math.IsNaN(*lng) {
		return false
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return false
	}
	return Distance(*lat, *lng, v.Latitude, v.Longitude) <= v.RadiusMeters
}

// Package geofence evaluates whether a coordinate falls inside a circular
// boundary. Pure functions, no dependencies; the attendance engine calls this
// on both the check-in and check-out legs.
package geofence

import "math"

const earthRadiusMeters = 6371000

// Result is the outcome of a geofence evaluation.
type Result struct {
	WithinRadius  bool    `json:"withinRadius"`
	DistanceM     float64 `json:"distanceMeters"`
	AllowedRadius float64 `json:"allowedRadiusMeters"`
}

// Evaluate computes the great-circle distance between the user position and
// the fence center and compares it to the radius. Callers must pre-validate
// coordinate ranges with ValidCoordinate.
func Evaluate(userLat, userLng, centerLat, centerLng, radiusMeters float64) Result {
	d := Distance(userLat, userLng, centerLat, centerLng)
	return Result{
		WithinRadius:  d <= radiusMeters,
		DistanceM:     d,
		AllowedRadius: radiusMeters,
	}
}

// Distance returns the haversine distance in meters between two coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// ValidCoordinate reports whether the latitude/longitude pair is in range.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Center is a candidate fence center for Nearest.
type Center struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// Nearest linearly scans candidates and returns the minimum-distance center
// and its distance. Ties keep the first encountered. Returns ok=false when
// the list is empty.
func Nearest(userLat, userLng float64, centers []Center) (nearest Center, distanceM float64, ok bool) {
	if len(centers) == 0 {
		return Center{}, 0, false
	}
	nearest = centers[0]
	distanceM = Distance(userLat, userLng, centers[0].Latitude, centers[0].Longitude)
	for _, c := range centers[1:] {
		if d := Distance(userLat, userLng, c.Latitude, c.Longitude); d < distanceM {
			nearest, distanceM = c, d
		}
	}
	return nearest, distanceM, true
}

package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371

// Mode is the work-mode tag derived from geofence classification.
type Mode string

const (
	ModeOnSite Mode = "on_site"
	ModeRemote Mode = "remote"
)

// DistanceKm menghitung jarak antara dua titik koordinat dalam Kilometer.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	// Konversi ke Radian
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	// Rumus Haversine
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Classify maps a coordinate to on_site or remote based on its haversine
// distance to the office coordinate. The boundary is inclusive: a point at
// exactly radiusKm is on_site. Invalid inputs (NaN) classify as remote;
// callers are expected to validate coordinates upstream.
func Classify(lat, lon, officeLat, officeLon, radiusKm float64) Mode {
	d := DistanceKm(lat, lon, officeLat, officeLon)
	if math.IsNaN(d) {
		return ModeRemote
	}
	if d <= radiusKm {
		return ModeOnSite
	}
	return ModeRemote
}

// ValidCoordinate reports whether the pair is a usable WGS84 coordinate.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

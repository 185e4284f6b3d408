package geo

import "math"

// Earth radius in meters (spherical approximation).
const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceM returns the great-circle distance between two points in meters
// using the haversine formula. NaN inputs propagate.
func DistanceM(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	x := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(x))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

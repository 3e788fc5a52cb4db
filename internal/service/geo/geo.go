// Package geo computes assignment-time dispatch metrics: great-circle
// distance between two coordinates and a priority-weighted ETA. Both
// functions are pure; callers validate coordinate ranges before calling.
package geo

import (
	"math"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
)

const (
	earthRadiusKm = 6371.0

	speedEmergencyKmh    = 60.0
	speedNonEmergencyKmh = 40.0

	bufferEmergencyMin    = 5
	bufferNonEmergencyMin = 10
)

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Distance returns the Haversine distance between two points in kilometers,
// rounded to 2 decimal places.
func Distance(a, b models.Location) float64 {
	lat1Rad := degreesToRadians(a.Latitude)
	lon1Rad := degreesToRadians(a.Longitude)
	lat2Rad := degreesToRadians(b.Latitude)
	lon2Rad := degreesToRadians(b.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	h := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	angle := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * angle)
}

// ETA estimates travel time in whole minutes for the given distance and
// priority. Emergency rides assume 60 km/h with a 5 minute buffer,
// non-emergency 40 km/h with a 10 minute buffer.
func ETA(distanceKm float64, priority types.Priority) int {
	speed := speedNonEmergencyKmh
	buffer := bufferNonEmergencyMin
	if priority == types.PriorityEmergency {
		speed = speedEmergencyKmh
		buffer = bufferEmergencyMin
	}

	minutes := int(math.Ceil(distanceKm / speed * 60))
	return minutes + buffer
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

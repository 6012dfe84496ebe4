package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fallback coordinate (Taipei 101) used when neither the AI nor the
// places provider supplies a usable location.
const (
	FallbackLat = 25.0330
	FallbackLng = 121.5654
)

const earthRadiusKm = 6371.0

// DefaultRadiusMeters is used for "unlimited" and anything unparseable.
const DefaultRadiusMeters = 5000.0

// ParseRadiusMeters maps a radius descriptor ("250m", "1km", "5km",
// "10km", "unlimited") to meters. Never fails: unknown input falls
// back to DefaultRadiusMeters.
func ParseRadiusMeters(radius string) float64 {
	s := strings.ToLower(strings.TrimSpace(radius))

	switch {
	case s == "" || s == "unlimited":
		return DefaultRadiusMeters
	case strings.HasSuffix(s, "km"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "km"), 64)
		if err != nil || v <= 0 {
			return DefaultRadiusMeters
		}
		return v * 1000
	case strings.HasSuffix(s, "m"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "m"), 64)
		if err != nil || v <= 0 {
			return DefaultRadiusMeters
		}
		return v
	default:
		return DefaultRadiusMeters
	}
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders a distance for display: meters below 1km,
// one-decimal kilometers otherwise.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

var latLngPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)`)

// ParseLatLng extracts a "lat,lng" pair out of free text. The location
// field accepts either a place name or raw coordinates; this is how a
// raw pair is recognized.
func ParseLatLng(s string) (lat, lng float64, ok bool) {
	m := latLngPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}

	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}

	return lat, lng, true
}

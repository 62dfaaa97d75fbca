package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const earthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned when a coordinate component is not numeric
// or falls outside the valid latitude/longitude range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// ParseComponent converts a raw coordinate component (string or numeric) to a
// float64. Chat gateways deliver location payloads with mixed types, so both
// forms are accepted.
func ParseComponent(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidCoordinate, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidCoordinate, raw)
	}
}

func validate(c Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of bounds: %v", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of bounds: %v", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between two coordinates in
// kilometers using the haversine formula. It fails with ErrInvalidCoordinate
// when either point is out of range; callers that tolerate missing locations
// must not call Distance for them and should treat the distance as +Inf.
func Distance(a, b Coordinate) (float64, error) {
	if err := validate(a); err != nil {
		return 0, err
	}
	if err := validate(b); err != nil {
		return 0, err
	}

	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h)), nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

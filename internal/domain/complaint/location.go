package complaint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Location is a latitude/longitude pair as stored in the location column.
//
// A Location parsed from the sheet remembers its original text so that writing
// it back reproduces the cell exactly. A cell that could not be parsed yields
// a Location with Valid() == false and the text available through Raw().
type Location struct {
	lat   float64
	lng   float64
	raw   string
	valid bool
}

// NewLocation builds a Location from coordinates.
func NewLocation(lat, lng float64) Location {
	return Location{lat: lat, lng: lng, valid: true}
}

// ParseLocation parses the "[lat, lng]" wire form.
// On failure the returned Location still carries the raw text.
func ParseLocation(s string) (Location, error) {
	malformed := Location{raw: s}

	inner := strings.TrimSpace(s)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")

	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return malformed, fmt.Errorf("%w: %q", ErrMalformedLocation, s)
	}

	lat, err := parseCoordinate(parts[0])
	if err != nil {
		return malformed, fmt.Errorf("%w: %q", ErrMalformedLocation, s)
	}
	lng, err := parseCoordinate(parts[1])
	if err != nil {
		return malformed, fmt.Errorf("%w: %q", ErrMalformedLocation, s)
	}

	return Location{lat: lat, lng: lng, raw: s, valid: true}, nil
}

func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite coordinate %q", s)
	}
	return v, nil
}

// Lat returns the latitude; zero when the location is not valid.
func (l Location) Lat() float64 { return l.lat }

// Lng returns the longitude; zero when the location is not valid.
func (l Location) Lng() float64 { return l.lng }

// Valid reports whether the location holds parsed coordinates.
func (l Location) Valid() bool { return l.valid }

// Raw returns the text the location was parsed from, if any.
func (l Location) Raw() string { return l.raw }

// IsZero reports whether the location is absent altogether.
func (l Location) IsZero() bool { return !l.valid && l.raw == "" }

// InRange reports whether the coordinates are on the globe.
func (l Location) InRange() bool {
	return l.valid && l.lat >= -90 && l.lat <= 90 && l.lng >= -180 && l.lng <= 180
}

// String returns the wire form. Parsed locations return their original text,
// built ones use the shortest decimal form that parses back to the same float.
func (l Location) String() string {
	if l.raw != "" || !l.valid {
		return l.raw
	}
	return "[" + formatCoordinate(l.lat) + ", " + formatCoordinate(l.lng) + "]"
}

// Short returns the 3-decimal display form. It is lossy and only meant for lists.
func (l Location) Short() string {
	if !l.valid {
		return l.raw
	}
	return fmt.Sprintf("[%.3f, %.3f]", l.lat, l.lng)
}

// Equal compares coordinates for valid locations and raw text otherwise.
func (l Location) Equal(other Location) bool {
	if l.valid != other.valid {
		return false
	}
	if !l.valid {
		return l.raw == other.raw
	}
	return l.lat == other.lat && l.lng == other.lng
}

// ShortenLocation shortens a wire-form location string for display.
// Unparsable input is returned unchanged.
func ShortenLocation(s string) string {
	loc, err := ParseLocation(s)
	if err != nil {
		return s
	}
	return loc.Short()
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidLocation is returned when latitude or longitude are missing,
// malformed or out of range.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a WGS-84 observer position. Elevation is meters above sea level;
// it is reported but does not shift rise or set times.
type Location struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
}

// ParseLocation parses signed decimal strings. An empty elevation means sea level.
func ParseLocation(lat, lon, elevation string) (Location, error) {
	latV, err := parseCoordinate(lat, 90)
	if err != nil {
		return Location{}, fmt.Errorf("%w: lat %q", ErrInvalidLocation, lat)
	}
	lonV, err := parseCoordinate(lon, 180)
	if err != nil {
		return Location{}, fmt.Errorf("%w: lon %q", ErrInvalidLocation, lon)
	}

	var elev float64
	if s := strings.TrimSpace(elevation); s != "" {
		elev, err = parseFinite(s)
		if err != nil {
			return Location{}, fmt.Errorf("%w: elevation %q", ErrInvalidLocation, elevation)
		}
	}

	return Location{Lat: latV, Lon: lonV, Elevation: elev}, nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if v < -limit || v > limit {
		return 0, errors.New("out of range")
	}
	return v, nil
}

// parseFinite rejects the NaN and Inf spellings strconv accepts.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// LatLng renders the position the way reports display it.
func (l Location) LatLng() string {
	return fmt.Sprintf("%.4f, %.4f", l.Lat, l.Lon)
}

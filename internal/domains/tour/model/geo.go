package model

import (
	"math"
	"strconv"
	"strings"
)

type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// EarthRadius in the unit, used to turn a distance into radians.
func (u Unit) EarthRadius() float64 {
	if u == Miles {
		return 3963.2
	}
	return 6378.1
}

// DistanceMultiplier converts metres into the unit.
func (u Unit) DistanceMultiplier() float64 {
	if u == Miles {
		return 0.000621371
	}
	return 0.001
}

// ParseUnit accepts only mi and km.
func ParseUnit(raw string) (Unit, error) {
	switch Unit(raw) {
	case Miles, Kilometers:
		return Unit(raw), nil
	}
	return "", ErrLatLng
}

// ParseLatLng parses "lat,lng" and range checks both values.
func ParseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, ErrLatLng
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || !finite(lat) || !finite(lng) ||
		lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, ErrLatLng
	}
	return lat, lng, nil
}

// ParseDistance accepts a positive decimal distance.
func ParseDistance(raw string) (float64, error) {
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(d) || d <= 0 {
		return 0, ErrLatLng
	}
	return d, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Radius converts distance in unit into radians for $centerSphere.
func Radius(distance float64, unit Unit) float64 {
	return distance / unit.EarthRadius()
}

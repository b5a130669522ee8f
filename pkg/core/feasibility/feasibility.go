// Package feasibility contains the pure checks used when reviewing a
// volunteer's registrations: time-window overlap and the advisory travel
// constraint between consecutive shifts.
package feasibility

import (
	"math"
	"time"
)

const (
	// MaxFeasibleSpeedMPS is the implied travel speed above which a volunteer
	// is flagged as unlikely to physically attend both shifts (~65 km/h).
	MaxFeasibleSpeedMPS = 18.0

	earthRadiusMeters = 6371000.0
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps returns true when the two windows share any instant.
// Touching windows (a.End == b.Start) do not overlap.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// OverlapsAny returns true when w overlaps at least one of the given windows.
func OverlapsAny(w Window, others []Window) bool {
	for _, other := range others {
		if Overlaps(w, other) {
			return true
		}
	}
	return false
}

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64
	Lng float64
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Location) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// TravelConstrained reports whether a volunteer holding both shifts would
// need to travel faster than MaxFeasibleSpeedMPS in the gap between them.
// Overlapping windows and zero-length gaps with any distance are constrained;
// co-located shifts never are. The result is advisory only.
func TravelConstrained(a, b Window, locA, locB Location) bool {
	if Overlaps(a, b) {
		return true
	}

	// Order so a ends before b starts.
	if b.End.Before(a.Start) || b.End.Equal(a.Start) {
		a, b = b, a
		locA, locB = locB, locA
	}

	distance := HaversineMeters(locA, locB)
	if distance == 0 {
		return false
	}

	gap := b.Start.Sub(a.End)
	if gap <= 0 {
		return true
	}

	impliedSpeed := distance / gap.Seconds()
	return impliedSpeed > MaxFeasibleSpeedMPS
}

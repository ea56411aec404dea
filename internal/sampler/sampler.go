// Package sampler turns a waypoint track into a continuous, time-indexed
// motion function. It is the single source of truth for "where is this
// vehicle at time T": the live preview clock and the export driver both call
// PositionAt, which guarantees the two can never visually diverge.
package sampler

import (
	"github.com/ivlev/traffic2video/internal/track"
)

// SpawnPolicy controls what a query before the first waypoint's arrival
// returns.
type SpawnPolicy int

const (
	// SpawnClamp holds the vehicle at its first waypoint from scenario
	// start, so it is visible before its path begins. This is the default.
	SpawnClamp SpawnPolicy = iota
	// SpawnHidden reports no position before the first arrival, so the
	// renderer leaves the vehicle undrawn until it spawns.
	SpawnHidden
)

// Sampler evaluates track positions. The zero value uses SpawnClamp.
type Sampler struct {
	Spawn SpawnPolicy
}

// PositionAt computes the position of a vehicle following tr at time qt.
// The second return is false when no position is defined: always for an
// empty track, and before the first arrival under SpawnHidden.
//
// The function is pure and reentrant; concurrent calls for the same track
// need no locking as long as the track is not edited mid-call.
func (s Sampler) PositionAt(tr *track.Track, qt float64) (track.Point, bool) {
	if tr.Len() == 0 {
		return track.Point{}, false
	}

	first := tr.At(0)
	if qt < first.Time {
		if s.Spawn == SpawnHidden {
			return track.Point{}, false
		}
		return first.Pos, true
	}

	// At or past the end of the path the vehicle rests at its final stop.
	if qt >= tr.TotalDuration() {
		return tr.At(tr.Len() - 1).Pos, true
	}

	prev, next, rel := tr.Bracket(qt)
	switch rel {
	case track.Before:
		return first.Pos, true
	case track.After:
		return tr.At(tr.Len() - 1).Pos, true
	}

	from := tr.At(prev)
	dwellEnd := from.Departure()
	if qt <= dwellEnd || prev == next {
		// Dwell phase: the vehicle pauses at the waypoint (a stop line,
		// a red light) before continuing.
		return from.Pos, true
	}

	to := tr.At(next)
	span := to.Time - dwellEnd
	f := 1.0
	if span > 0 {
		f = (qt - dwellEnd) / span
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return track.Point{
		X: lerp(from.Pos.X, to.Pos.X, f),
		Y: lerp(from.Pos.Y, to.Pos.Y, f),
	}, true
}

// PositionAt samples with the default clamp-to-first spawn policy.
func PositionAt(tr *track.Track, qt float64) (track.Point, bool) {
	return Sampler{}.PositionAt(tr, qt)
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

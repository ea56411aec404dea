package track

import (
	"fmt"
	"sort"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64
	Y float64
}

// Waypoint is a user-placed control point on a vehicle path: the vehicle
// arrives at Pos at Time (seconds from scenario start) and stays there for
// Dwell seconds before moving on.
type Waypoint struct {
	Pos   Point
	Time  float64
	Dwell float64
}

// Departure returns the moment the vehicle leaves this waypoint.
func (w Waypoint) Departure() float64 {
	return w.Time + w.Dwell
}

// OrderingError reports a structural edit that would break strict time
// ordering of a track. The edit is rejected and the track left unchanged.
type OrderingError struct {
	Index    int     // index of the offending waypoint
	Time     float64 // its arrival time
	NotAfter float64 // the departure time it failed to exceed
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("waypoint %d: arrival %.3fs must be after previous departure %.3fs",
		e.Index, e.Time, e.NotAfter)
}

// Relation classifies where a query time falls relative to a track.
type Relation int

const (
	// Before means the query time precedes the first waypoint's arrival.
	Before Relation = iota
	// Within means the query time is bracketed by two waypoints (possibly
	// the same waypoint twice, when the time falls in its trailing dwell).
	Within
	// After means the query time exceeds the track's total duration.
	After
)

// Track is the time-ordered waypoint sequence of one vehicle. Waypoints are
// kept sorted by strictly increasing arrival time; every arrival must come
// after the previous waypoint's departure. The zero value is an empty track
// ready to use.
//
// A Track is not safe for concurrent mutation; sampling reads may run
// concurrently as long as no edit is in flight (snapshot with Clone if an
// export overlaps editing).
type Track struct {
	waypoints []Waypoint
}

// New builds a track from waypoints, validating ordering.
func New(waypoints ...Waypoint) (*Track, error) {
	tr := &Track{}
	for _, wp := range waypoints {
		if err := tr.Append(wp); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// Len returns the number of waypoints.
func (t *Track) Len() int {
	return len(t.waypoints)
}

// At returns the waypoint at index i. Panics if out of range, like a slice.
func (t *Track) At(i int) Waypoint {
	return t.waypoints[i]
}

// Waypoints returns a copy of the waypoint sequence.
func (t *Track) Waypoints() []Waypoint {
	out := make([]Waypoint, len(t.waypoints))
	copy(out, t.waypoints)
	return out
}

// TotalDuration returns the scenario time at which the path completes: the
// last waypoint's arrival plus its dwell. Zero for an empty track.
func (t *Track) TotalDuration() float64 {
	if len(t.waypoints) == 0 {
		return 0
	}
	return t.waypoints[len(t.waypoints)-1].Departure()
}

// Append adds a waypoint at the end of the track. The new arrival must
// strictly exceed the previous waypoint's departure, otherwise Append
// returns an *OrderingError and the track is unchanged.
func (t *Track) Append(wp Waypoint) error {
	if err := validate(t.waypoints, wp, len(t.waypoints)); err != nil {
		return err
	}
	t.waypoints = append(t.waypoints, wp)
	return nil
}

// InsertAt inserts a waypoint at index i, shifting later waypoints up.
// The whole sequence is re-validated; on violation the edit is rolled back
// and an *OrderingError returned.
func (t *Track) InsertAt(i int, wp Waypoint) error {
	if i < 0 || i > len(t.waypoints) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(t.waypoints))
	}
	next := make([]Waypoint, 0, len(t.waypoints)+1)
	next = append(next, t.waypoints[:i]...)
	next = append(next, wp)
	next = append(next, t.waypoints[i:]...)
	if err := validateAll(next); err != nil {
		return err
	}
	t.waypoints = next
	return nil
}

// Remove deletes the waypoint at index i. Removal cannot break ordering, so
// the only failure is an out-of-range index.
func (t *Track) Remove(i int) error {
	if i < 0 || i >= len(t.waypoints) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(t.waypoints))
	}
	t.waypoints = append(t.waypoints[:i], t.waypoints[i+1:]...)
	return nil
}

// Clone returns a deep copy. Exports snapshot tracks with Clone so that
// interactive edits can never race a running export.
func (t *Track) Clone() *Track {
	return &Track{waypoints: t.Waypoints()}
}

// Bracket locates the pair of adjacent waypoints surrounding query time qt:
// prev.Time <= qt <= next.Time. It is a pure binary search; no interpolation
// happens here.
//
// The returned relation distinguishes the sentinel cases: Before when qt
// precedes the first arrival, After when qt exceeds TotalDuration. When qt
// falls inside the last waypoint's trailing dwell the pair degenerates to
// (last, last) with relation Within. On an empty track Bracket returns
// (0, 0, After).
func (t *Track) Bracket(qt float64) (prev, next int, rel Relation) {
	n := len(t.waypoints)
	if n == 0 {
		return 0, 0, After
	}
	if qt < t.waypoints[0].Time {
		return 0, 0, Before
	}
	if qt > t.TotalDuration() {
		return n - 1, n - 1, After
	}

	// First index whose arrival is strictly after qt; prev is the one before.
	idx := sort.Search(n, func(i int) bool {
		return t.waypoints[i].Time > qt
	})
	prev = idx - 1
	next = prev + 1
	if next >= n {
		next = prev // inside the final dwell
	}
	return prev, next, Within
}

func validate(existing []Waypoint, wp Waypoint, index int) error {
	if wp.Time < 0 || wp.Dwell < 0 {
		return &OrderingError{Index: index, Time: wp.Time, NotAfter: 0}
	}
	if len(existing) == 0 {
		return nil
	}
	last := existing[len(existing)-1]
	if wp.Time <= last.Departure() {
		return &OrderingError{Index: index, Time: wp.Time, NotAfter: last.Departure()}
	}
	return nil
}

func validateAll(waypoints []Waypoint) error {
	for i, wp := range waypoints {
		if err := validate(waypoints[:i], wp, i); err != nil {
			return err
		}
	}
	return nil
}

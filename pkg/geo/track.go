package geo

// Track accumulates ground distance along a sequence of positions and
// remembers where it started, so the overall course flown can be
// derived. Not safe for concurrent use; callers own synchronization.
type Track struct {
	first    Point
	last     Point
	count    int
	distance float64
}

// Push adds the next position and returns the total distance so far in
// meters.
func (t *Track) Push(p Point) float64 {
	if t.count == 0 {
		t.first = p
	} else {
		t.distance += Distance(t.last, p)
	}
	t.last = p
	t.count++
	return t.distance
}

// Distance returns the accumulated ground distance in meters.
func (t *Track) Distance() float64 {
	return t.distance
}

// Course returns the bearing in degrees from the first position to the
// latest one. It reports false until two positions have been pushed.
func (t *Track) Course() (float64, bool) {
	if t.count < 2 {
		return 0, false
	}
	return Bearing(t.first, t.last), true
}

// Reset clears the accumulated track.
func (t *Track) Reset() {
	*t = Track{}
}

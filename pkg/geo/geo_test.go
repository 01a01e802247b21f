package geo

import (
	"math"
	"testing"
)

func TestDistanceOneDegreeLatitude(t *testing.T) {
	d := Distance(Point{Lat: 47, Lon: 11}, Point{Lat: 48, Lon: 11})
	// One degree of latitude is roughly 111.2 km.
	if d < 110000 || d > 112500 {
		t.Fatalf("distance = %v, want ~111km", d)
	}
}

func TestDestinationPointRoundtrip(t *testing.T) {
	start := Point{Lat: 47.42, Lon: 10.98}
	dest := DestinationPoint(start, 1000, 90)

	d := Distance(start, dest)
	if math.Abs(d-1000) > 10 {
		t.Fatalf("roundtrip distance = %v, want ~1000", d)
	}
	if dest.Lon <= start.Lon {
		t.Fatalf("eastbound destination lon %v not east of %v", dest.Lon, start.Lon)
	}
}

func TestBearingCardinal(t *testing.T) {
	cases := []struct {
		name string
		to   Point
		want float64
	}{
		{"north", Point{Lat: 48, Lon: 11}, 0},
		{"east", Point{Lat: 47, Lon: 12}, 90},
		{"south", Point{Lat: 46, Lon: 11}, 180},
		{"west", Point{Lat: 47, Lon: 10}, 270},
	}
	from := Point{Lat: 47, Lon: 11}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Bearing(from, tc.to)
			if math.Abs(got-tc.want) > 1 {
				t.Fatalf("bearing = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrackAccumulates(t *testing.T) {
	var tr Track
	start := Point{Lat: 47, Lon: 11}
	mid := DestinationPoint(start, 500, 90)
	end := DestinationPoint(mid, 500, 90)

	if d := tr.Push(start); d != 0 {
		t.Fatalf("first push distance = %v, want 0", d)
	}
	tr.Push(mid)
	total := tr.Push(end)
	if math.Abs(total-1000) > 10 {
		t.Fatalf("total = %v, want ~1000", total)
	}

	tr.Reset()
	if tr.Distance() != 0 {
		t.Fatalf("distance after reset = %v, want 0", tr.Distance())
	}
	if d := tr.Push(end); d != 0 {
		t.Fatalf("push after reset = %v, want 0", d)
	}
}

func TestTrackCourse(t *testing.T) {
	var tr Track

	if _, ok := tr.Course(); ok {
		t.Fatal("course reported on an empty track")
	}

	start := Point{Lat: 47, Lon: 11}
	tr.Push(start)
	if _, ok := tr.Course(); ok {
		t.Fatal("course reported after a single position")
	}

	tr.Push(DestinationPoint(start, 1000, 90))
	course, ok := tr.Course()
	if !ok {
		t.Fatal("no course after two positions")
	}
	if math.Abs(course-90) > 0.5 {
		t.Fatalf("course = %v, want ~90", course)
	}

	tr.Reset()
	if _, ok := tr.Course(); ok {
		t.Fatal("course survived reset")
	}
}

// Package series provides the date-indexed time series and the aligned
// frame the pipeline computes over. Both are value types with ascending,
// day-normalized date indexes; a missing cell is absent, never zero.
package series

import (
	"sort"
	"time"
)

// Point is one observation of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// TimeSeries is an ordered mapping from calendar date to a numeric value.
// Dates are strictly increasing and normalized to day precision; setting a
// value for an existing date overwrites it (last observation wins).
type TimeSeries struct {
	points []Point
}

// Day normalizes t to midnight UTC. All series and frame indexes use this
// canonical day-level representation.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New returns an empty time series.
func New() TimeSeries {
	return TimeSeries{}
}

// FromPoints builds a series from points in any order. Duplicate dates keep
// the later point in the input.
func FromPoints(points []Point) TimeSeries {
	var s TimeSeries
	for _, p := range points {
		s.Set(p.Date, p.Value)
	}
	return s
}

// Set records a value for a date, overwriting any existing observation.
func (s *TimeSeries) Set(date time.Time, value float64) {
	d := Day(date)
	i := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(d)
	})
	if i < len(s.points) && s.points[i].Date.Equal(d) {
		s.points[i].Value = value
		return
	}
	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = Point{Date: d, Value: value}
}

// At returns the value observed on date.
func (s TimeSeries) At(date time.Time) (float64, bool) {
	d := Day(date)
	i := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(d)
	})
	if i < len(s.points) && s.points[i].Date.Equal(d) {
		return s.points[i].Value, true
	}
	return 0, false
}

// Len returns the number of observations.
func (s TimeSeries) Len() int {
	return len(s.points)
}

// Empty reports whether the series has no observations.
func (s TimeSeries) Empty() bool {
	return len(s.points) == 0
}

// Points returns the observations in ascending date order. The returned
// slice must not be mutated.
func (s TimeSeries) Points() []Point {
	return s.points
}

// First returns the earliest observation.
func (s TimeSeries) First() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[0], true
}

// Last returns the latest observation.
func (s TimeSeries) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Slice returns the observations within [start, end] inclusive as a new
// series.
func (s TimeSeries) Slice(start, end time.Time) TimeSeries {
	from, to := Day(start), Day(end)
	var out TimeSeries
	for _, p := range s.points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out.points = append(out.points, p)
	}
	return out
}

// Map returns a new series with fn applied to every value.
func (s TimeSeries) Map(fn func(float64) float64) TimeSeries {
	out := TimeSeries{points: make([]Point, len(s.points))}
	for i, p := range s.points {
		out.points[i] = Point{Date: p.Date, Value: fn(p.Value)}
	}
	return out
}

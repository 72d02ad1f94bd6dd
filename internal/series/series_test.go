package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight UTC",
			in:   date(2024, time.March, 15),
			want: date(2024, time.March, 15),
		},
		{
			name: "intraday timestamp truncates",
			in:   time.Date(2024, time.March, 15, 13, 45, 12, 0, time.UTC),
			want: date(2024, time.March, 15),
		},
		{
			name: "local zone keeps the wall-clock day",
			in:   time.Date(2024, time.March, 15, 9, 0, 0, 0, loc),
			want: date(2024, time.March, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Day(tt.in))
		})
	}
}

func TestTimeSeriesSetKeepsAscendingOrder(t *testing.T) {
	var s TimeSeries
	s.Set(date(2024, time.March, 3), 3)
	s.Set(date(2024, time.March, 1), 1)
	s.Set(date(2024, time.March, 2), 2)

	points := s.Points()
	require.Len(t, points, 3)
	assert.Equal(t, date(2024, time.March, 1), points[0].Date)
	assert.Equal(t, date(2024, time.March, 2), points[1].Date)
	assert.Equal(t, date(2024, time.March, 3), points[2].Date)
}

func TestTimeSeriesSetLastObservationWins(t *testing.T) {
	var s TimeSeries
	s.Set(date(2024, time.March, 1), 1.0)
	s.Set(date(2024, time.March, 1), 2.5)

	require.Equal(t, 1, s.Len())
	v, ok := s.At(date(2024, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestTimeSeriesSetNormalizesToDay(t *testing.T) {
	var s TimeSeries
	s.Set(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), 1.0)
	s.Set(time.Date(2024, time.March, 1, 17, 30, 0, 0, time.UTC), 2.0)

	require.Equal(t, 1, s.Len())
	v, ok := s.At(date(2024, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestTimeSeriesSlice(t *testing.T) {
	s := FromPoints([]Point{
		{Date: date(2024, time.March, 1), Value: 1},
		{Date: date(2024, time.March, 2), Value: 2},
		{Date: date(2024, time.March, 3), Value: 3},
		{Date: date(2024, time.March, 4), Value: 4},
	})

	got := s.Slice(date(2024, time.March, 2), date(2024, time.March, 3))
	require.Equal(t, 2, got.Len())

	first, _ := got.First()
	last, _ := got.Last()
	assert.Equal(t, 2.0, first.Value)
	assert.Equal(t, 3.0, last.Value)
}

func TestTimeSeriesMap(t *testing.T) {
	s := FromPoints([]Point{
		{Date: date(2024, time.March, 1), Value: 1},
		{Date: date(2024, time.March, 2), Value: -2},
	})

	doubled := s.Map(func(v float64) float64 { return v * 2 })

	v, _ := doubled.At(date(2024, time.March, 1))
	assert.Equal(t, 2.0, v)
	v, _ = doubled.At(date(2024, time.March, 2))
	assert.Equal(t, -4.0, v)

	// Original is untouched.
	v, _ = s.At(date(2024, time.March, 1))
	assert.Equal(t, 1.0, v)
}

func TestTimeSeriesEmpty(t *testing.T) {
	s := New()
	assert.True(t, s.Empty())

	_, ok := s.First()
	assert.False(t, ok)
	_, ok = s.Last()
	assert.False(t, ok)
	assert.True(t, s.Slice(date(2024, time.January, 1), date(2024, time.December, 31)).Empty())
}

package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    Frequency
		wantErr bool
	}{
		{in: "D", want: Daily},
		{in: "W", want: Weekly},
		{in: "M", want: Monthly},
		{in: "Q", want: Quarterly},
		{in: "Y", want: Yearly},
		{in: "m", want: Monthly},
		{in: " q ", want: Quarterly},
		{in: "X", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrequency(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		a, b time.Time
		same bool
	}{
		{
			name: "same month shares monthly key",
			freq: Monthly,
			a:    date(2024, time.March, 1),
			b:    date(2024, time.March, 31),
			same: true,
		},
		{
			name: "month boundary splits monthly key",
			freq: Monthly,
			a:    date(2024, time.March, 31),
			b:    date(2024, time.April, 1),
			same: false,
		},
		{
			name: "monday and sunday share a week",
			freq: Weekly,
			a:    date(2024, time.March, 4),
			b:    date(2024, time.March, 10),
			same: true,
		},
		{
			name: "quarter boundary splits quarterly key",
			freq: Quarterly,
			a:    date(2024, time.March, 31),
			b:    date(2024, time.April, 1),
			same: false,
		},
		{
			name: "same quarter shares quarterly key",
			freq: Quarterly,
			a:    date(2024, time.January, 2),
			b:    date(2024, time.March, 29),
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, tt.freq.PeriodKey(tt.a), tt.freq.PeriodKey(tt.b))
			} else {
				assert.NotEqual(t, tt.freq.PeriodKey(tt.a), tt.freq.PeriodKey(tt.b))
			}
		})
	}
}

func TestPeriodEnd(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		in   time.Time
		want time.Time
	}{
		{
			name: "daily is identity",
			freq: Daily,
			in:   date(2024, time.March, 15),
			want: date(2024, time.March, 15),
		},
		{
			name: "weekly ends on sunday",
			freq: Weekly,
			in:   date(2024, time.March, 6), // Wednesday
			want: date(2024, time.March, 10),
		},
		{
			name: "sunday is its own week end",
			freq: Weekly,
			in:   date(2024, time.March, 10),
			want: date(2024, time.March, 10),
		},
		{
			name: "monthly ends on last calendar day",
			freq: Monthly,
			in:   date(2024, time.February, 10),
			want: date(2024, time.February, 29), // leap year
		},
		{
			name: "quarterly ends on quarter boundary",
			freq: Quarterly,
			in:   date(2024, time.May, 2),
			want: date(2024, time.June, 30),
		},
		{
			name: "yearly ends on december 31",
			freq: Yearly,
			in:   date(2024, time.July, 4),
			want: date(2024, time.December, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.freq.PeriodEnd(tt.in))
		})
	}
}

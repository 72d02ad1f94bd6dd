package series

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is a reporting period granularity.
type Frequency string

const (
	Daily     Frequency = "D"
	Weekly    Frequency = "W"
	Monthly   Frequency = "M"
	Quarterly Frequency = "Q"
	Yearly    Frequency = "Y"
)

// ParseFrequency parses a frequency token, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Quarterly:
		return Quarterly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown frequency %q (want D, W, M, Q or Y)", s)
}

// PeriodKey returns a value identifying the reporting period containing t.
// Two dates share a key iff they fall in the same period.
func (f Frequency) PeriodKey(t time.Time) string {
	d := Day(t)
	switch f {
	case Daily:
		return d.Format("2006-01-02")
	case Weekly:
		// ISO week; Sunday belongs to the week it ends.
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return d.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", d.Year(), (int(d.Month())-1)/3+1)
	case Yearly:
		return d.Format("2006")
	}
	return d.Format("2006-01-02")
}

// PeriodEnd returns the last calendar day of the reporting period
// containing t.
func (f Frequency) PeriodEnd(t time.Time) time.Time {
	d := Day(t)
	switch f {
	case Daily:
		return d
	case Weekly:
		// Weeks end on Sunday.
		offset := (7 - int(d.Weekday())) % 7
		return d.AddDate(0, 0, offset)
	case Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	case Quarterly:
		q := (int(d.Month()) - 1) / 3
		firstOfQuarter := time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		return firstOfQuarter.AddDate(0, 3, -1)
	case Yearly:
		return time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return d
}

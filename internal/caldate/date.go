// Package caldate provides a timezone-free calendar date. Receivable due
// dates are day-granular and must never shift across timezone boundaries,
// so instants are avoided everywhere except the audit timestamps.
package caldate

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day or location.
// The zero value is "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a normalized Date. Out-of-range components roll over the
// same way time.Date rolls them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime truncates an instant to its calendar date in UTC.
func FromTime(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// Parse accepts dd/mm/yyyy (the display format) and yyyy-mm-dd (the
// persistence format). Empty input yields the zero Date without error.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
		day, err1 := strconv.Atoi(parts[0])
		month, err2 := strconv.Atoi(parts[1])
		year, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
		if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
		return Date{Year: year, Month: time.Month(month), Day: day}, nil
	}
	// ISO form, with or without a time suffix.
	if idx := strings.IndexByte(s, 'T'); idx > 0 {
		s = s[:idx]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return FromTime(t), nil
}

// MustParse is a test helper; it panics on malformed input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the "no date" value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.time().Weekday()
}

// IsWeekend reports Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Equal reports calendar equality.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// DaysUntil returns the number of calendar days from d to other;
// negative when other is in the past relative to d.
func (d Date) DaysUntil(other Date) int {
	return int(other.time().Sub(d.time()) / (24 * time.Hour))
}

// Format renders dd/mm/yyyy, the display format. Zero renders empty.
func (d Date) Format() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// ISO renders yyyy-mm-dd, the persistence format. Zero renders empty.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string { return d.Format() }

// Value stores the date as ISO text, NULL when zero.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.ISO(), nil
}

// Scan accepts text in either supported format, time.Time, or NULL.
// Malformed persisted values scan to the zero Date rather than failing
// the whole row.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			*d = Date{}
			return nil
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into caldate.Date", src)
	}
}

// MarshalJSON emits the display format as a JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format())), nil
}

// UnmarshalJSON accepts either supported format; malformed input
// unmarshals to zero, matching the Scan behavior.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("caldate: %w", err)
	}
	parsed, perr := Parse(s)
	if perr != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// GormDataType tells gorm to store dates as plain text.
func (Date) GormDataType() string { return "text" }

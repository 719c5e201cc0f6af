package caldate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDisplayFormat(t *testing.T) {
	d, err := Parse("01/08/2025")
	assert.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.August, Day: 1}, d)
	assert.Equal(t, "01/08/2025", d.Format())
	assert.Equal(t, "2025-08-01", d.ISO())
}

func TestParseISOFormat(t *testing.T) {
	d, err := Parse("2025-09-05")
	assert.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.September, Day: 5}, d)

	// Timestamps from the remote round down to the date.
	d, err = Parse("2025-09-05T14:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 5, d.Day)
}

func TestParseEmptyAndInvalid(t *testing.T) {
	d, err := Parse("")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Parse("31/13/2025")
	assert.Error(t, err)
	_, err = Parse("not-a-date")
	assert.Error(t, err)
}

func TestAddDaysAndWeekday(t *testing.T) {
	// 2025-08-01 is a Friday.
	d := MustParse("01/08/2025")
	assert.Equal(t, time.Friday, d.Weekday())
	assert.False(t, d.IsWeekend())

	sat := d.AddDays(1)
	assert.Equal(t, time.Saturday, sat.Weekday())
	assert.True(t, sat.IsWeekend())

	// Month rollover.
	assert.Equal(t, MustParse("31/08/2025"), d.AddDays(30))
	assert.Equal(t, MustParse("01/09/2025"), d.AddDays(31))
}

func TestDaysUntilAndOrdering(t *testing.T) {
	a := MustParse("01/09/2025")
	b := MustParse("05/09/2025")
	assert.Equal(t, 4, a.DaysUntil(b))
	assert.Equal(t, -4, b.DaysUntil(a))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, a.Equal(MustParse("2025-09-01")))
}

func TestScanToleratesMalformedValues(t *testing.T) {
	var d Date
	assert.NoError(t, d.Scan("garbage"))
	assert.True(t, d.IsZero())
	assert.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.NoError(t, d.Scan("2025-08-01"))
	assert.Equal(t, MustParse("01/08/2025"), d)
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("05/09/2025")
	raw, err := d.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"05/09/2025"`, string(raw))

	var back Date
	assert.NoError(t, back.UnmarshalJSON(raw))
	assert.True(t, d.Equal(back))
}

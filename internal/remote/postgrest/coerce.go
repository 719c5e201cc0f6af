package postgrest

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
)

// toDecimal coerces any remote value to a decimal; invalid input is 0.
func toDecimal(v any) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	if s := cast.ToString(v); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.NewFromFloat(cast.ToFloat64(v))
}

// toDate coerces any remote value to a calendar date; invalid input is
// the zero date.
func toDate(v any) caldate.Date {
	d, err := caldate.Parse(cast.ToString(v))
	if err != nil {
		return caldate.Date{}
	}
	return d
}

// toTime coerces a remote timestamp; invalid input is the zero time.
func toTime(v any) time.Time {
	return cast.ToTime(v)
}

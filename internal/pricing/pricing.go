// Package pricing computes booking prices from hourly rates.
package pricing

import (
	"venuebook/internal/apperr"
	"venuebook/internal/models"

	"github.com/shopspring/decimal"
)

// ErrInvalidInterval is returned when end does not come after start.
var ErrInvalidInterval = apperr.New(apperr.Validation, "end time must be after start time")

var minutesPerHour = decimal.NewFromInt(60)

// Compute returns ratePerHour multiplied by the interval length in
// hours. The result is rounded to 2 decimal places, half-up; callers
// rely on that rounding, treat it as part of the contract.
func Compute(ratePerHour decimal.Decimal, start, end models.TimeOfDay) (decimal.Decimal, error) {
	minutes := end.Minutes() - start.Minutes()
	if minutes <= 0 {
		return decimal.Zero, ErrInvalidInterval
	}
	hours := decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
	return ratePerHour.Mul(hours).Round(2), nil
}

// Duration returns the interval length in hours as a decimal, rounded
// the same way as Compute.
func Duration(start, end models.TimeOfDay) (decimal.Decimal, error) {
	minutes := end.Minutes() - start.Minutes()
	if minutes <= 0 {
		return decimal.Zero, ErrInvalidInterval
	}
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(2), nil
}

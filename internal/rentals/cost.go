package rentals

import (
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// computeCharge prices an occupancy. Partial hours are billed pro rata and
// rounded up to the next cent; any non-zero occupancy is clamped to the
// configured minimum. Zero elapsed minutes bills nothing at all.
func computeCharge(elapsedMinutes, hourlyRateCents, minChargeCents int64) int64 {
	if elapsedMinutes <= 0 {
		return 0
	}
	charge := decimal.NewFromInt(elapsedMinutes).
		Div(sixty).
		Mul(decimal.NewFromInt(hourlyRateCents)).
		Ceil().
		IntPart()
	if charge < minChargeCents {
		return minChargeCents
	}
	return charge
}

// elapsedMinutesBetween floors the occupancy to whole minutes. A clock that
// reads before the session start yields zero rather than a negative span.
func elapsedMinutesBetween(start, now time.Time) int64 {
	if !now.After(start) {
		return 0
	}
	return int64(now.Sub(start) / time.Minute)
}

package market

import "math"

// Rounding boundaries for the simulation. Every conversion out of raw
// price arithmetic goes through one of these named steps so the rule
// (round half-up, symmetric around zero) is applied in exactly one place.

func roundHalfUp(x float64, places int) float64 {
	scale := math.Pow10(places)
	if x < 0 {
		return -math.Floor(-x*scale+0.5) / scale
	}
	return math.Floor(x*scale+0.5) / scale
}

// RoundPrice formats a price for the venue: 5 decimal places.
func RoundPrice(x float64) float64 {
	return roundHalfUp(x, 5)
}

// RoundPriceUnits rounds a profit expressed in raw price units: 6 decimal places.
func RoundPriceUnits(x float64) float64 {
	return roundHalfUp(x, 6)
}

// RoundPips rounds a pip amount to one decimal place.
func RoundPips(x float64) float64 {
	return roundHalfUp(x, 1)
}

// RoundCash rounds an account-currency amount to cents.
func RoundCash(x float64) float64 {
	return roundHalfUp(x, 2)
}

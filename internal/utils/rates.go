package utils

import (
	"github.com/shopspring/decimal"
)

const ratePrecision = 4

// Rate computes numerator/denominator rounded to four decimal places, or nil
// when the denominator is zero.
func Rate(numerator, denominator int) *float64 {
	if denominator == 0 {
		return nil
	}
	rate := decimal.NewFromInt(int64(numerator)).
		Div(decimal.NewFromInt(int64(denominator))).
		Round(ratePrecision).
		InexactFloat64()
	return &rate
}

// RoundRate rounds an already computed rate to four decimal places.
func RoundRate(rate float64) float64 {
	return decimal.NewFromFloat(rate).Round(ratePrecision).InexactFloat64()
}

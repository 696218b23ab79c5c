// Package format turns raw magnitudes into the display strings used on the
// dashboard pages: scaled numbers with k/M suffixes, temperatures and
// percentages.
package format

import (
	"html/template"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	thousand = 1_000
	million  = 1_000_000

	// DefaultDecimals is the number of fractional digits used by Number.
	DefaultDecimals = 2

	maxDecimals = 100
)

// FormatNumber scales value by magnitude and rounds it to decimals fractional digits.
// Values >= 1e6 get a " M" suffix, values >= 1e3 a " k" suffix, anything smaller
// (including negatives) is printed as-is.
func FormatNumber(value float64, decimals int) string {
	switch {
	case value >= million:
		return toFixed(value/million, decimals) + " M"
	case value >= thousand:
		return toFixed(value/thousand, decimals) + " k"
	default:
		return toFixed(value, decimals)
	}
}

// Number is FormatNumber with DefaultDecimals.
func Number(value float64) string {
	return FormatNumber(value, DefaultDecimals)
}

// FormatTemperature renders a Celsius value with one fractional digit.
func FormatTemperature(value float64) string {
	return toFixed(value, 1) + " °C"
}

// FormatPercentage renders an already-scaled percentage (50 means 50%) with two fractional digits.
func FormatPercentage(value float64) string {
	return toFixed(value, 2) + " %"
}

// FuncMap exposes the formatters to html/template under the names the page
// templates use. formatNumber takes an optional decimals argument.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatNumber": func(value float64, decimals ...int) string {
			if len(decimals) > 0 {
				return FormatNumber(value, decimals[0])
			}
			return Number(value)
		},
		"formatTemperature": FormatTemperature,
		"formatPercentage":  FormatPercentage,
	}
}

// toFixed rounds the exact binary value of v to decimals digits, ties away from zero.
// strconv.FormatFloat rounds ties to even, so 1.5 -> "2" but 2.5 -> "2"; dashboards
// expect 2.5 -> "3".
func toFixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if decimals > maxDecimals {
		decimals = maxDecimals
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	scaled := new(big.Rat).SetFloat64(math.Abs(v))
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled.Mul(scaled, new(big.Rat).SetInt(pow))

	q, r := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if r.Lsh(r, 1).Cmp(scaled.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	digits := q.String()
	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		cut := len(digits) - decimals
		digits = digits[:cut] + "." + digits[cut:]
	}
	if v < 0 {
		return "-" + digits
	}
	return digits
}

// Package rounding applies retail price-ending policies.
package rounding

import (
	"errors"
	"math"
	"strings"
)

var ErrUnknownRule = errors.New("unknown_rounding_rule")

// Rule names a price-ending policy.
type Rule string

const (
	None          Rule = "NONE"
	EndsIn99      Rule = "ENDS_IN_99"
	EndsIn95      Rule = "ENDS_IN_95"
	EndsIn90      Rule = "ENDS_IN_90"
	Nearest5      Rule = "NEAREST_5"
	Nearest10     Rule = "NEAREST_10"
	MXNDiscount99 Rule = "MXN_DISCOUNT_99"
	MXNRetail90   Rule = "MXN_RETAIL_90"
	MXNCash50     Rule = "MXN_CASH_50"
	MXNLuxury00   Rule = "MXN_LUXURY_00"
)

// ParseRule accepts any casing. An empty string is None.
func ParseRule(raw string) (Rule, error) {
	r := Rule(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case "":
		return None, nil
	case None, EndsIn99, EndsIn95, EndsIn90, Nearest5, Nearest10,
		MXNDiscount99, MXNRetail90, MXNCash50, MXNLuxury00:
		return r, nil
	default:
		return "", ErrUnknownRule
	}
}

// Apply rounds value under rule. Unknown rules pass the value through.
func Apply(value float64, rule Rule) float64 {
	switch rule {
	case EndsIn99, MXNDiscount99:
		return math.Floor(value) + 0.99
	case EndsIn95:
		return math.Floor(value) + 0.95
	case EndsIn90, MXNRetail90:
		return math.Floor(value) + 0.90
	case MXNCash50:
		return math.Floor(value) + 0.50
	case MXNLuxury00:
		return math.Round(value)
	case Nearest5:
		return nearest(value, 5)
	case Nearest10:
		return nearest(value, 10)
	default:
		return value
	}
}

func nearest(value, step float64) float64 {
	return math.Round(value/step) * step
}

// Result keeps the pre-rounding price next to the rounded one so the
// difference can be shown to the user.
type Result struct {
	Rule     Rule    `json:"rule"`
	Original float64 `json:"original"`
	Rounded  float64 `json:"rounded"`
	Delta    float64 `json:"delta"`
}

func Round(value float64, rule Rule) Result {
	rounded := Apply(value, rule)
	return Result{
		Rule:     rule,
		Original: value,
		Rounded:  rounded,
		Delta:    rounded - value,
	}
}

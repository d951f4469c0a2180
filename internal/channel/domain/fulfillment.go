package domain

import "sort"

// FulfillmentType says who stores and ships the goods.
type FulfillmentType string

const (
	FulfillmentSelf FulfillmentType = "SELF"
	FulfillmentFBM  FulfillmentType = "FBM"
	FulfillmentFBA  FulfillmentType = "FBA"
	FulfillmentFull FulfillmentType = "FULL"
	FulfillmentWFS  FulfillmentType = "WFS"
)

// IsMarketplaceOperated reports whether the marketplace warehouses the goods
// and charges tiered fulfillment fees.
func (t FulfillmentType) IsMarketplaceOperated() bool {
	switch t {
	case FulfillmentFBA, FulfillmentFull, FulfillmentWFS:
		return true
	default:
		return false
	}
}

// SizeTier is the fulfillment fee bracket a package falls in.
type SizeTier string

const (
	SizeSmall     SizeTier = "small"
	SizeStandard  SizeTier = "standard"
	SizeLarge     SizeTier = "large"
	SizeOversized SizeTier = "oversized"
)

// Dimensions of a package in centimetres.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// sorted returns the sides longest first.
func (d Dimensions) sorted() [3]float64 {
	sides := []float64{d.Length, d.Width, d.Height}
	sort.Sort(sort.Reverse(sort.Float64Slice(sides)))
	return [3]float64{sides[0], sides[1], sides[2]}
}

func (d Dimensions) LongestSide() float64 {
	return d.sorted()[0]
}

// Girth is twice the sum of the two shorter sides.
func (d Dimensions) Girth() float64 {
	s := d.sorted()
	return 2 * (s[1] + s[2])
}

// CubicMeters converts the package volume from cm³.
func (d Dimensions) CubicMeters() float64 {
	return d.Length * d.Width * d.Height / 1_000_000
}

// ClassifySize picks the size tier for a package. Weight is in kilograms.
func ClassifySize(d Dimensions, weight float64) SizeTier {
	longest, girth := d.LongestSide(), d.Girth()
	switch {
	case longest <= 33 && girth <= 60 && weight <= 1:
		return SizeSmall
	case longest <= 45 && girth <= 130 && weight <= 9:
		return SizeStandard
	case weight <= 30:
		return SizeLarge
	default:
		return SizeOversized
	}
}

// WeightBracket prices packages up to MaxWeight kilograms.
type WeightBracket struct {
	MaxWeight float64 `json:"max_weight"`
	BaseFee   float64 `json:"base_fee"`
	PerKgOver float64 `json:"per_kg_over"`
}

// FulfillmentTiers maps a size tier to its weight brackets.
type FulfillmentTiers map[SizeTier][]WeightBracket

// Fee prices a package of the given tier and weight. The overage is measured
// from the ceiling of the tier's first (lightest) bracket; packages heavier
// than every bracket use the last one. ok is false when the tier has no data.
func (t FulfillmentTiers) Fee(tier SizeTier, weight float64) (fee float64, ok bool) {
	brackets := append([]WeightBracket(nil), t[tier]...)
	if len(brackets) == 0 {
		return 0, false
	}
	sort.Slice(brackets, func(i, j int) bool { return brackets[i].MaxWeight < brackets[j].MaxWeight })

	selected := brackets[len(brackets)-1]
	for _, b := range brackets {
		if weight <= b.MaxWeight {
			selected = b
			break
		}
	}

	over := weight - brackets[0].MaxWeight
	if over < 0 {
		over = 0
	}
	return selected.BaseFee + selected.PerKgOver*over, true
}

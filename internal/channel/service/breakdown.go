package service

import (
	"math"

	"github.com/railzwaylabs/pricestack/internal/channel/domain"
)

const (
	// DefaultFreeShippingThreshold is the price from which managed-logistics
	// marketplaces mandate free shipping.
	DefaultFreeShippingThreshold = 299.0

	selfShipBase  = 50.0
	selfShipPerKg = 15.0
)

// BreakdownInput is everything the cost breakdown depends on. VATRate is a
// fraction.
type BreakdownInput struct {
	SellingPrice          float64
	Costs                 domain.CostInputs
	CustomCosts           []domain.CustomCost
	Rule                  domain.CommissionRule
	Channel               string
	VATRate               float64
	FreeShippingThreshold float64
}

// SelfShipEstimate is the flat shipping cost assumed when no tier data is
// available.
func SelfShipEstimate(weight float64) float64 {
	return selfShipBase + selfShipPerKg*weight
}

// ShipsFree reports whether the seller absorbs shipping at the given price.
func ShipsFree(channel string, price, threshold float64, offered bool) bool {
	if threshold <= 0 {
		threshold = DefaultFreeShippingThreshold
	}
	if domain.IsManagedLogistics(channel) && !domain.IsFullFulfillment(channel) && price >= threshold {
		return true
	}
	return offered
}

// CalculateBreakdown itemizes the per-unit cost of selling at in.SellingPrice.
// Platform fees carry VAT on top.
func CalculateBreakdown(in BreakdownInput) domain.CostBreakdown {
	price := in.SellingPrice
	vat := 1 + in.VATRate
	rule := in.Rule
	costs := in.Costs

	b := domain.CostBreakdown{
		SellingPrice:    price,
		COG:             costs.COG,
		Packaging:       costs.PackagingCost,
		InboundShipping: costs.InboundShipping,
		FreeShipping:    ShipsFree(in.Channel, price, in.FreeShippingThreshold, costs.OfferFreeShipping),
	}

	b.Commission = math.Max(price*rule.ReferralFeePercent/100, rule.MinReferralFee) * vat
	b.Commission += rule.PerUnitFee * vat

	if rule.FulfillmentType.IsMarketplaceOperated() {
		b.SizeTier = domain.ClassifySize(costs.Dimensions, costs.Weight)
		fee, ok := rule.Tiers().Fee(b.SizeTier, costs.Weight)
		if !ok {
			fee = SelfShipEstimate(costs.Weight)
		}
		b.Fulfillment = fee
		b.Storage = rule.MonthlyStoragePerCubicMeter * costs.Dimensions.CubicMeters() / 30
	} else if !b.FreeShipping {
		b.Fulfillment = SelfShipEstimate(costs.Weight)
	}

	b.PaymentProcessing = (price*rule.PaymentProcessingPercent/100 + rule.PaymentProcessingFixed) * vat

	b.Total = b.COG + b.Commission + b.Fulfillment + b.Storage + b.PaymentProcessing + b.Packaging + b.InboundShipping
	if len(in.CustomCosts) > 0 {
		b.CustomCosts = append([]domain.CustomCost(nil), in.CustomCosts...)
		for _, c := range in.CustomCosts {
			b.Total += c.Amount
		}
	}
	return b
}

package service

import (
	"math"

	"github.com/railzwaylabs/pricestack/internal/channel/domain"
)

const (
	MaxSolverIterations = 10
	MarginTolerance     = 0.1

	// assumedFeeLoad is the fee share, in percent, assumed when seeding.
	assumedFeeLoad = 30.0
	// minSeedDenominator keeps the seed finite for targets near 70% or more.
	minSeedDenominator = 0.05

	stepUp   = 1.02
	stepDown = 0.99
)

// SolveInput is a breakdown input without a price, plus the margin to hit.
type SolveInput struct {
	BreakdownInput
	TargetNetMargin float64
}

// SeedPrice is the solver's first guess.
func SeedPrice(cog, targetNetMargin float64) float64 {
	denom := 1 - (targetNetMargin+assumedFeeLoad)/100
	if denom < minSeedDenominator {
		denom = minSeedDenominator
	}
	return cog / denom
}

// SolveChannelPrice searches for the selling price whose net margin lands
// within MarginTolerance points of the target. The search multiplies the
// price by 1.02 when under target and 0.99 when over. After
// MaxSolverIterations the closest price seen is returned with Converged false.
func SolveChannelPrice(in SolveInput) domain.ChannelPrice {
	price := SeedPrice(in.Costs.COG, in.TargetNetMargin)

	var best domain.ChannelPrice
	bestErr := math.Inf(1)
	for i := 1; i <= MaxSolverIterations; i++ {
		cp := EvaluateAt(in, price)
		diff := math.Abs(cp.NetMargin - in.TargetNetMargin)
		if diff < bestErr {
			best, bestErr = cp, diff
		}
		if diff < MarginTolerance {
			best.Iterations = i
			best.Converged = true
			return best
		}
		if cp.NetMargin < in.TargetNetMargin {
			price *= stepUp
		} else {
			price *= stepDown
		}
	}

	best.Iterations = MaxSolverIterations
	return best
}

// EvaluateAt computes the economics of selling at price.
func EvaluateAt(in SolveInput, price float64) domain.ChannelPrice {
	bi := in.BreakdownInput
	bi.SellingPrice = price
	b := CalculateBreakdown(bi)

	cp := domain.ChannelPrice{
		Channel:         in.Channel,
		SellingPrice:    price,
		Breakdown:       b,
		NetRevenue:      price / (1 + in.VATRate),
		TargetNetMargin: in.TargetNetMargin,
		Competitive:     true,
	}
	cp.GrossProfit = cp.NetRevenue - in.Costs.COG
	cp.NetProfit = cp.NetRevenue - b.Total
	if price != 0 {
		cp.GrossMargin = cp.GrossProfit / price * 100
		cp.NetMargin = cp.NetProfit / price * 100
	}
	if in.Costs.COG != 0 {
		cp.ROI = cp.NetProfit / in.Costs.COG * 100
	}
	if in.Costs.CompetitorPrice != nil {
		cp.Competitive = price <= *in.Costs.CompetitorPrice
	}
	cp.MarginError = cp.NetMargin - in.TargetNetMargin
	return cp
}

// ValidateMargins checks a solved price against a minimum net margin in
// percent. The price is valid only when no warning is raised.
func ValidateMargins(price domain.ChannelPrice, minimumMargin float64) domain.MarginValidation {
	warnings := []string{}
	if price.NetMargin < minimumMargin {
		warnings = append(warnings, "net_margin_below_minimum")
	}
	if price.NetProfit < 0 {
		warnings = append(warnings, "negative_net_profit")
	}
	if price.SellingPrice < price.Breakdown.COG {
		warnings = append(warnings, "price_below_cog")
	}
	return domain.MarginValidation{Valid: len(warnings) == 0, Warnings: warnings}
}

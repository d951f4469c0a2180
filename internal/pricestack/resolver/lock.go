package resolver

import (
	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
)

// LockResult is the outcome of solving a margin for a pinned price.
type LockResult struct {
	TargetPrice float64 `json:"target_price"`
	// MarginValue is the percentage assigned to the margin block.
	MarginValue float64 `json:"margin_value"`
	NetPrice    float64 `json:"net_price"`
	HardCosts   float64 `json:"hard_costs"`
	MarginIndex int     `json:"margin_index"`
	Resolved    Result  `json:"resolved"`
}

// SolveMarginForLockedPrice solves the first active MARGIN block so the stack
// lands on targetPrice, then re-runs forward resolution from the stack's start
// value so each block's amounts agree with the solved margin.
//
// The net price strips the first active TAX block from targetPrice. Hard costs
// are every other active non-margin, non-tax block: PERCENT_OF_TOTAL against
// targetPrice, PERCENT_OF_BASE against the net price, FIXED as is. FEE amounts
// carry vatRate on top since the platform taxes its own fees. DISCOUNT blocks
// reduce hard costs.
func SolveMarginForLockedPrice(stack domain.Stack, targetPrice, vatRate float64) (LockResult, error) {
	if targetPrice <= 0 {
		return LockResult{}, domain.ErrInvalidTargetPrice
	}
	if err := stack.Validate(); err != nil {
		return LockResult{}, err
	}

	work := stack.Clone()
	marginIdx := work.FindFirst(domain.BlockTypeMargin)
	if marginIdx < 0 {
		return LockResult{}, domain.ErrNoMarginBlock
	}

	taxRate := 0.0
	if taxIdx := work.FindFirst(domain.BlockTypeTax); taxIdx >= 0 {
		taxRate = work.Blocks[taxIdx].Value() / 100
	}
	netPrice := targetPrice / (1 + taxRate)

	hardCosts := 0.0
	for _, b := range work.Blocks {
		if !b.Active || b.Type == domain.BlockTypeMargin || b.Type == domain.BlockTypeTax {
			continue
		}
		amount := b.Basis.Amount(netPrice, targetPrice)
		if b.Type == domain.BlockTypeFee {
			amount *= 1 + vatRate
		}
		hardCosts += b.Type.Sign() * amount
	}

	marginValue := (netPrice - hardCosts) / targetPrice * 100
	margin := &work.Blocks[marginIdx]
	margin.Basis = margin.Basis.WithValue(marginValue)

	return LockResult{
		TargetPrice: targetPrice,
		MarginValue: marginValue,
		NetPrice:    netPrice,
		HardCosts:   hardCosts,
		MarginIndex: marginIdx,
		Resolved:    ResolveForward(work.StartValue, work.Blocks),
	}, nil
}

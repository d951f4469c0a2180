// Package resolver resolves price stacks. Every function here is pure: inputs
// are copied, nothing is shared between calls, and there is no I/O.
package resolver

import (
	"math"

	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
)

const (
	// ForwardMaxPasses caps the fixed-point iteration.
	ForwardMaxPasses = 20
	// ForwardTolerance is the largest change in total between two passes that
	// still counts as converged.
	ForwardTolerance = 0.01

	// Initial guess for the total: fees are assumed to be about half of cost.
	forwardSeedFactor = 1.5
)

// Result is a resolved copy of a stack.
type Result struct {
	Mode       domain.Mode    `json:"mode"`
	StartValue float64        `json:"start_value"`
	Blocks     []domain.Block `json:"blocks"`
	// Total is the running subtotal after the last block: the selling price in
	// forward mode, the unallocated remainder in inverse mode.
	Total     float64 `json:"total"`
	Passes    int     `json:"passes"`
	Converged bool    `json:"converged"`
}

// Resolve dispatches on the stack mode. It is the single entry point used by
// interactive resolution, the margin-lock solver and the what-if simulator.
func Resolve(stack domain.Stack) (Result, error) {
	if err := stack.Validate(); err != nil {
		return Result{}, err
	}
	switch stack.Mode {
	case domain.ModeForward, "":
		return ResolveForward(stack.StartValue, stack.Blocks), nil
	case domain.ModeInverse:
		return ResolveInverse(stack.StartValue, stack.Blocks), nil
	default:
		return Result{}, domain.ErrUnknownMode
	}
}

// ResolveForward derives a price from startValue by fixed-point iteration.
//
// PERCENT_OF_TOTAL blocks read the total estimated by the previous pass,
// PERCENT_OF_BASE blocks read the subtotal accumulated so far in the current
// pass. The running subtotal is seeded with startValue before the walk, so a
// COST block that repeats startValue is counted twice. Running out of passes
// is not an error; the last pass is returned with Converged unset.
func ResolveForward(startValue float64, blocks []domain.Block) Result {
	out := domain.CloneBlocks(blocks)
	res := Result{Mode: domain.ModeForward, StartValue: startValue, Blocks: out}

	estimated := startValue * forwardSeedFactor
	for pass := 1; pass <= ForwardMaxPasses; pass++ {
		previous := estimated
		running := startValue

		for i := range out {
			b := &out[i]
			if !b.Active || b.Basis == nil {
				b.CalculatedAmount = 0
				b.SubtotalAfter = running
				continue
			}
			amount := b.Basis.Amount(running, estimated)
			b.CalculatedAmount = amount
			running += b.Type.Sign() * amount
			b.SubtotalAfter = running
		}

		estimated = running
		res.Passes = pass
		if math.Abs(estimated-previous) <= ForwardTolerance {
			res.Converged = true
			break
		}
	}

	res.Total = estimated
	return res
}

// ResolveInverse decomposes targetPrice in a single pass.
//
// Both percentage bases read targetPrice. A VAT/IVA tax block takes the portion
// embedded in a tax-inclusive price instead of a flat percentage.
func ResolveInverse(targetPrice float64, blocks []domain.Block) Result {
	out := domain.CloneBlocks(blocks)
	remaining := targetPrice

	for i := range out {
		b := &out[i]
		if !b.Active || b.Basis == nil {
			b.CalculatedAmount = 0
			b.SubtotalAfter = remaining
			continue
		}

		var amount float64
		if b.IsVAT() {
			amount = targetPrice - targetPrice/(1+b.Value()/100)
		} else {
			amount = b.Basis.Amount(targetPrice, targetPrice)
		}
		b.CalculatedAmount = amount
		remaining -= amount
		b.SubtotalAfter = remaining
	}

	return Result{
		Mode:       domain.ModeInverse,
		StartValue: targetPrice,
		Blocks:     out,
		Total:      remaining,
		Passes:     1,
		Converged:  true,
	}
}

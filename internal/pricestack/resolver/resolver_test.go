package resolver_test

import (
	"testing"

	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	"github.com/railzwaylabs/pricestack/internal/pricestack/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(t domain.BlockType, label string, basis domain.Basis) domain.Block {
	return domain.Block{Label: label, Type: t, Basis: basis, Active: true}
}

func TestResolveForwardFixedPoint(t *testing.T) {
	res := resolver.ResolveForward(100, []domain.Block{
		block(domain.BlockTypeMargin, "Margin", domain.PercentOfTotal(20)),
	})

	require.Len(t, res.Blocks, 1)
	assert.True(t, res.Converged)
	assert.InDelta(t, 125.0, res.Blocks[0].SubtotalAfter, 0.01)
	assert.InDelta(t, 25.0, res.Blocks[0].CalculatedAmount, 0.01)
	assert.InDelta(t, 125.0, res.Total, 0.01)
}

func TestResolveForwardPercentOfBaseUsesRunningSubtotal(t *testing.T) {
	res := resolver.ResolveForward(100, []domain.Block{
		block(domain.BlockTypeFee, "Handling", domain.PercentOfBase(10)),
		block(domain.BlockTypeMargin, "Margin", domain.PercentOfBase(10)),
	})

	assert.InDelta(t, 10.0, res.Blocks[0].CalculatedAmount, 1e-9)
	assert.InDelta(t, 110.0, res.Blocks[0].SubtotalAfter, 1e-9)
	assert.InDelta(t, 11.0, res.Blocks[1].CalculatedAmount, 1e-9)
	assert.InDelta(t, 121.0, res.Total, 1e-9)
}

func TestResolveForwardDiscountSubtracts(t *testing.T) {
	res := resolver.ResolveForward(100, []domain.Block{
		block(domain.BlockTypeDiscount, "Promo", domain.PercentOfBase(10)),
		block(domain.BlockTypeShipping, "Shipping", domain.Fixed(15)),
	})

	assert.InDelta(t, 10.0, res.Blocks[0].CalculatedAmount, 1e-9)
	assert.InDelta(t, 90.0, res.Blocks[0].SubtotalAfter, 1e-9)
	assert.InDelta(t, 105.0, res.Total, 1e-9)
}

func TestResolveForwardCountsMirroredCostTwice(t *testing.T) {
	res := resolver.ResolveForward(100, []domain.Block{
		{Label: "COG", Type: domain.BlockTypeCost, Basis: domain.Fixed(100), Active: true, Locked: true},
	})

	assert.InDelta(t, 200.0, res.Total, 1e-9)
	assert.InDelta(t, 100.0, res.Blocks[0].CalculatedAmount, 1e-9)
}

func TestResolveForwardSkipsInactiveBlocks(t *testing.T) {
	inactive := block(domain.BlockTypeFee, "Old fee", domain.Fixed(40))
	inactive.Active = false

	res := resolver.ResolveForward(100, []domain.Block{
		inactive,
		block(domain.BlockTypeFee, "Fee", domain.Fixed(10)),
	})

	assert.Zero(t, res.Blocks[0].CalculatedAmount)
	assert.InDelta(t, 100.0, res.Blocks[0].SubtotalAfter, 1e-9)
	assert.InDelta(t, 110.0, res.Total, 1e-9)
}

func TestResolveForwardReturnsLastPassWhenDiverging(t *testing.T) {
	res := resolver.ResolveForward(100, []domain.Block{
		block(domain.BlockTypeFee, "Runaway", domain.PercentOfTotal(100)),
	})

	assert.False(t, res.Converged)
	assert.Equal(t, resolver.ForwardMaxPasses, res.Passes)
	assert.InDelta(t, 2150.0, res.Total, 1e-9)
}

func TestResolveForwardDoesNotMutateInput(t *testing.T) {
	in := []domain.Block{block(domain.BlockTypeMargin, "Margin", domain.PercentOfTotal(20))}
	in[0].CalculatedAmount = 999

	res := resolver.ResolveForward(100, in)

	assert.Equal(t, 999.0, in[0].CalculatedAmount)
	assert.Zero(t, in[0].SubtotalAfter)
	assert.NotEqual(t, in[0].CalculatedAmount, res.Blocks[0].CalculatedAmount)
}

func TestResolveInverseExtractsEmbeddedVAT(t *testing.T) {
	res := resolver.ResolveInverse(200, []domain.Block{
		block(domain.BlockTypeTax, "IVA 16%", domain.PercentOfBase(16)),
	})

	assert.InDelta(t, 27.586, res.Blocks[0].CalculatedAmount, 0.001)
	assert.InDelta(t, 172.414, res.Blocks[0].SubtotalAfter, 0.001)
}

func TestResolveInverseCollapsesPercentBases(t *testing.T) {
	res := resolver.ResolveInverse(200, []domain.Block{
		block(domain.BlockTypeFee, "Commission", domain.PercentOfBase(10)),
		block(domain.BlockTypeFee, "Gateway", domain.PercentOfTotal(10)),
		block(domain.BlockTypeShipping, "Shipping", domain.Fixed(30)),
	})

	assert.InDelta(t, 20.0, res.Blocks[0].CalculatedAmount, 1e-9)
	assert.InDelta(t, 20.0, res.Blocks[1].CalculatedAmount, 1e-9)
	assert.InDelta(t, 30.0, res.Blocks[2].CalculatedAmount, 1e-9)
	assert.InDelta(t, 130.0, res.Total, 1e-9)
	assert.Equal(t, 1, res.Passes)
}

func TestForwardInverseRoundTrip(t *testing.T) {
	blocks := []domain.Block{
		block(domain.BlockTypeFee, "Packaging", domain.Fixed(5)),
		block(domain.BlockTypeFee, "Commission", domain.PercentOfTotal(15)),
		block(domain.BlockTypeMargin, "Margin", domain.PercentOfTotal(20)),
	}

	fwd := resolver.ResolveForward(100, blocks)
	require.True(t, fwd.Converged)

	inv := resolver.ResolveInverse(fwd.Total, blocks)
	for i := range blocks {
		assert.InDelta(t, fwd.Blocks[i].CalculatedAmount, inv.Blocks[i].CalculatedAmount, 0.01, blocks[i].Label)
	}
	assert.InDelta(t, 100.0, inv.Total, 0.02)
}

func TestResolveDispatchesOnMode(t *testing.T) {
	blocks := []domain.Block{block(domain.BlockTypeTax, "IVA", domain.PercentOfBase(16))}

	fwd, err := resolver.Resolve(domain.Stack{StartValue: 100, Mode: domain.ModeForward, Blocks: blocks})
	require.NoError(t, err)
	assert.InDelta(t, 116.0, fwd.Total, 1e-9)

	inv, err := resolver.Resolve(domain.Stack{StartValue: 116, Mode: domain.ModeInverse, Blocks: blocks})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, inv.Total, 1e-9)

	_, err = resolver.Resolve(domain.Stack{StartValue: 1, Mode: "SIDEWAYS", Blocks: blocks})
	assert.ErrorIs(t, err, domain.ErrUnknownMode)

	_, err = resolver.Resolve(domain.Stack{StartValue: 1, Blocks: []domain.Block{{Type: domain.BlockTypeFee, Active: true}}})
	assert.ErrorIs(t, err, domain.ErrMissingBasis)
}

func TestSimulateRunsEachStartValue(t *testing.T) {
	stack := domain.Stack{
		Mode:   domain.ModeForward,
		Blocks: []domain.Block{block(domain.BlockTypeMargin, "Margin", domain.PercentOfTotal(20))},
	}

	scenarios, err := resolver.Simulate(stack, []float64{100, 200})
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.InDelta(t, 125.0, scenarios[0].Result.Total, 0.01)
	assert.InDelta(t, 250.0, scenarios[1].Result.Total, 0.02)
	assert.InDelta(t, 20.0, scenarios[1].Summary.MarginPercent, 0.01)
}

package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/railzwaylabs/pricestack/internal/config"
	"github.com/railzwaylabs/pricestack/internal/observability"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricingruleservice "github.com/railzwaylabs/pricestack/internal/pricingrule/service"
	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	"github.com/railzwaylabs/pricestack/internal/pricestack/service"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRules applies one fixed rule to every product.
type fakeRules struct {
	pricingruledomain.Service
	rule *pricingruledomain.PricingRule
}

func (f fakeRules) SeedStack(_ context.Context, _ pricingruledomain.ProductTarget, stack domain.Stack) (domain.Stack, *pricingruledomain.PricingRule, error) {
	return pricingruleservice.ApplyToStack(f.rule, stack), f.rule, nil
}

func marginStack() domain.Stack {
	return domain.Stack{
		StartValue: 100,
		Mode:       domain.ModeForward,
		Blocks: []domain.Block{
			{Label: "Margin", Type: domain.BlockTypeMargin, Basis: domain.PercentOfTotal(20), Active: true},
		},
	}
}

func newService(rules pricingruledomain.Service, metrics *observability.Metrics) *service.Service {
	return service.New(service.Params{
		Log:     zap.NewNop(),
		Config:  config.Config{Pricing: config.PricingConfig{VATRate: 0.16}},
		Rules:   rules,
		Metrics: metrics,
	})
}

func TestResolveWithRoundingAndSummary(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := newService(nil, metrics)

	out, err := svc.Resolve(context.Background(), service.ResolveRequest{Stack: marginStack(), Rounding: rounding.EndsIn99})
	require.NoError(t, err)

	assert.InDelta(t, 125.0, out.Result.Total, 0.01)
	assert.InDelta(t, 20.0, out.Summary.MarginPercent, 0.01)
	require.NotNil(t, out.Rounding)
	assert.InDelta(t, 125.99, out.Rounding.Rounded, 1e-9)
	assert.Nil(t, out.AppliedRule)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.SolverIterations))
}

func TestResolveSeedsMarginFromRule(t *testing.T) {
	rule := &pricingruledomain.PricingRule{ID: snowflake.ID(9), Action: pricingruledomain.ActionSetMargin, Value: 50}
	svc := newService(fakeRules{rule: rule}, nil)

	out, err := svc.Resolve(context.Background(), service.ResolveRequest{
		Stack:   marginStack(),
		Product: &pricingruledomain.ProductTarget{Brand: "acme"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.AppliedRule)
	assert.InDelta(t, 50.0, out.Summary.MarginPercent, 0.5)
}

func TestResolveRejectsUnknownRounding(t *testing.T) {
	_, err := newService(nil, nil).Resolve(context.Background(), service.ResolveRequest{Stack: marginStack(), Rounding: "UP"})
	assert.ErrorIs(t, err, rounding.ErrUnknownRule)
}

func TestLockUsesConfiguredVAT(t *testing.T) {
	stack := marginStack()
	stack.Blocks = append(stack.Blocks, domain.Block{Label: "Fee", Type: domain.BlockTypeFee, Basis: domain.Fixed(10), Active: true})

	res, err := newService(nil, nil).Lock(context.Background(), stack, 200)
	require.NoError(t, err)
	assert.InDelta(t, 11.6, res.HardCosts, 1e-9)
	assert.InDelta(t, (200-11.6)/200*100, res.MarginValue, 1e-9)
}

func TestSimulateRequiresStartValues(t *testing.T) {
	_, err := newService(nil, nil).Simulate(context.Background(), marginStack(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStartValue)
}

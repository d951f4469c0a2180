package service

import (
	"context"

	"github.com/railzwaylabs/pricestack/internal/config"
	"github.com/railzwaylabs/pricestack/internal/observability"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	"github.com/railzwaylabs/pricestack/internal/pricestack/resolver"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	solverForward = "stack_forward"
	solverLock    = "margin_lock"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Rules   pricingruledomain.Service `optional:"true"`
	Metrics *observability.Metrics    `optional:"true"`
}

// Service runs the stack resolvers with the configured VAT rate and, when a
// product is given, seeds margins from the applicable pricing rule.
type Service struct {
	log     *zap.Logger
	vatRate float64
	rules   pricingruledomain.Service
	metrics *observability.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:     p.Log.Named("pricestack.service"),
		vatRate: p.Config.Pricing.VATRate,
		rules:   p.Rules,
		metrics: p.Metrics,
	}
}

type ResolveRequest struct {
	Stack    domain.Stack
	Rounding rounding.Rule
	Product  *pricingruledomain.ProductTarget
}

type ResolveResponse struct {
	Result      resolver.Result                `json:"result"`
	Summary     resolver.Summary               `json:"summary"`
	Rounding    *rounding.Result               `json:"rounding,omitempty"`
	AppliedRule *pricingruledomain.PricingRule `json:"applied_rule,omitempty"`
}

func (s *Service) seed(ctx context.Context, stack domain.Stack, product *pricingruledomain.ProductTarget) (domain.Stack, *pricingruledomain.PricingRule, error) {
	if product == nil || s.rules == nil {
		return stack, nil, nil
	}
	return s.rules.SeedStack(ctx, *product, stack)
}

func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error) {
	stack, applied, err := s.seed(ctx, req.Stack, req.Product)
	if err != nil {
		return ResolveResponse{}, err
	}
	rule, err := rounding.ParseRule(string(req.Rounding))
	if err != nil {
		return ResolveResponse{}, err
	}

	res, err := resolver.Resolve(stack)
	if err != nil {
		return ResolveResponse{}, err
	}
	if res.Mode == domain.ModeForward {
		s.metrics.ObserveSolver(solverForward, res.Passes, res.Converged)
		if !res.Converged {
			s.log.Warn("stack did not converge",
				zap.Float64("start_value", res.StartValue),
				zap.Float64("total", res.Total),
				zap.Int("passes", res.Passes),
			)
		}
	}

	out := ResolveResponse{Result: res, Summary: resolver.Summarize(res), AppliedRule: applied}
	if rule != rounding.None && res.Mode == domain.ModeForward {
		r := rounding.Round(res.Total, rule)
		out.Rounding = &r
	}
	return out, nil
}

// Lock pins the selling price and solves the margin block.
func (s *Service) Lock(ctx context.Context, stack domain.Stack, targetPrice float64) (resolver.LockResult, error) {
	res, err := resolver.SolveMarginForLockedPrice(stack, targetPrice, s.vatRate)
	if err != nil {
		return resolver.LockResult{}, err
	}
	s.metrics.ObserveSolver(solverLock, res.Resolved.Passes, res.Resolved.Converged)
	return res, nil
}

func (s *Service) Simulate(ctx context.Context, stack domain.Stack, startValues []float64) ([]resolver.Scenario, error) {
	if len(startValues) == 0 {
		return nil, domain.ErrInvalidStartValue
	}
	return resolver.Simulate(stack, startValues)
}

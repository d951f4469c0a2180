package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/config"
	"github.com/railzwaylabs/pricestack/internal/observability"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultCountry = "MX"

	solverName = "channel_price"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Repo    domain.Repository
	GenID   *snowflake.Node
	Clock   clock.Clock            `optional:"true"`
	Redis   *redis.Client          `optional:"true"`
	Metrics *observability.Metrics `optional:"true"`
	Tracer  trace.Tracer           `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	pricing config.PricingConfig
	repo    domain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	cache   *ruleCache
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func NewService(p ServiceParam) domain.Service {
	log := p.Log.Named("channel.service")

	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	tracer := p.Tracer
	if tracer == nil {
		tracer = otel.Tracer("channel.service")
	}

	return &service{
		db:      p.DB,
		log:     log,
		pricing: p.Config.Pricing,
		repo:    p.Repo,
		genID:   p.GenID,
		clock:   clk,
		cache:   newRuleCache(p.Redis, p.Config.Redis.RuleCacheTTL, log),
		metrics: p.Metrics,
		tracer:  tracer,
	}
}

func normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return DefaultCountry
	}
	return country
}

func (s *service) ResolveRule(ctx context.Context, channel, country string, categoryID *string) (domain.ResolvedRule, error) {
	code := domain.NormalizeChannel(channel)
	if code == "" {
		return domain.ResolvedRule{}, domain.ErrInvalidChannel
	}
	country = normalizeCountry(country)
	if categoryID != nil && strings.TrimSpace(*categoryID) == "" {
		categoryID = nil
	}

	// lookups pinned to another instant bypass the cache
	_, pinned := clock.AsOf(ctx)

	key := ruleCacheKey(code, country, categoryID)
	if !pinned {
		if cached, ok := s.cache.get(ctx, key); ok {
			s.countLookup("cache")
			return cached, nil
		}
	}

	resolved, err := s.lookupRule(ctx, code, country, categoryID)
	if err != nil {
		return domain.ResolvedRule{}, err
	}

	if !pinned {
		s.cache.set(ctx, key, resolved)
	}
	s.countLookup(string(resolved.Source))
	return resolved, nil
}

func (s *service) lookupRule(ctx context.Context, channel, country string, categoryID *string) (domain.ResolvedRule, error) {
	now := s.clock.Now(ctx)

	if categoryID != nil {
		rule, err := s.repo.FindActive(ctx, s.db, channel, country, categoryID, now)
		if err != nil {
			s.log.Error("failed to find category commission rule", zap.String("channel", channel), zap.Error(err))
			return domain.ResolvedRule{}, err
		}
		if rule != nil {
			return domain.ResolvedRule{Rule: *rule, Source: domain.RuleSourceCategory}, nil
		}
	}

	rule, err := s.repo.FindActive(ctx, s.db, channel, country, nil, now)
	if err != nil {
		s.log.Error("failed to find channel commission rule", zap.String("channel", channel), zap.Error(err))
		return domain.ResolvedRule{}, err
	}
	if rule != nil {
		return domain.ResolvedRule{Rule: *rule, Source: domain.RuleSourceChannel}, nil
	}

	return domain.ResolvedRule{
		Rule:   DefaultRule(channel, country, s.pricing),
		Source: domain.RuleSourceDefault,
	}, nil
}

func (s *service) countLookup(source string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RuleLookups.WithLabelValues(source).Inc()
}

func (s *service) ListRules(ctx context.Context, channel string) ([]domain.CommissionRule, error) {
	if channel != "" {
		channel = domain.NormalizeChannel(channel)
	}
	return s.repo.List(ctx, s.db, channel)
}

func (s *service) CreateRule(ctx context.Context, rule domain.CommissionRule) (domain.CommissionRule, error) {
	rule.Channel = domain.NormalizeChannel(rule.Channel)
	if rule.Channel == "" {
		return domain.CommissionRule{}, domain.ErrInvalidChannel
	}
	if err := validateRule(rule); err != nil {
		return domain.CommissionRule{}, err
	}
	rule.Country = normalizeCountry(rule.Country)
	if rule.FulfillmentType == "" {
		rule.FulfillmentType = domain.FulfillmentSelf
	}

	now := s.clock.Now(ctx)
	rule.ID = s.genID.Generate()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		s.log.Error("failed to insert commission rule", zap.String("channel", rule.Channel), zap.Error(err))
		return domain.CommissionRule{}, err
	}

	s.cache.invalidate(ctx, rule.Channel)
	return rule, nil
}

func validateRule(rule domain.CommissionRule) error {
	if rule.ReferralFeePercent < 0 || rule.ReferralFeePercent >= 100 {
		return domain.ErrInvalidRule
	}
	if rule.PaymentProcessingPercent < 0 || rule.PaymentProcessingPercent >= 100 {
		return domain.ErrInvalidRule
	}
	if rule.MinReferralFee < 0 || rule.PaymentProcessingFixed < 0 || rule.PerUnitFee < 0 || rule.MonthlyStoragePerCubicMeter < 0 {
		return domain.ErrInvalidRule
	}
	if rule.EffectiveDate != nil && rule.EndDate != nil && !rule.EndDate.After(*rule.EffectiveDate) {
		return domain.ErrInvalidRule
	}
	for _, brackets := range rule.Tiers() {
		for _, b := range brackets {
			if b.MaxWeight <= 0 || b.BaseFee < 0 || b.PerKgOver < 0 {
				return domain.ErrInvalidRule
			}
		}
	}
	return nil
}

func (s *service) CalculateChannelPrice(ctx context.Context, req domain.PriceRequest) (domain.ChannelPrice, error) {
	code := domain.NormalizeChannel(req.Channel)
	ctx, span := s.tracer.Start(ctx, "channel.CalculateChannelPrice",
		trace.WithAttributes(attribute.String("pricing.channel", code)),
	)
	defer span.End()

	if code == "" {
		return domain.ChannelPrice{}, domain.ErrInvalidChannel
	}
	if err := req.Costs.Validate(); err != nil {
		return domain.ChannelPrice{}, err
	}
	roundingRule, err := rounding.ParseRule(string(req.Rounding))
	if err != nil {
		return domain.ChannelPrice{}, err
	}

	target := s.pricing.DefaultMargin(code)
	if req.TargetNetMargin != nil {
		target = *req.TargetNetMargin
	}
	if target >= 100 {
		return domain.ChannelPrice{}, domain.ErrInvalidTargetMargin
	}

	resolved, err := s.ResolveRule(ctx, code, req.Country, req.CategoryID)
	if err != nil {
		span.RecordError(err)
		return domain.ChannelPrice{}, fmt.Errorf("resolve commission rule: %w", err)
	}

	in := SolveInput{
		BreakdownInput: BreakdownInput{
			Costs:                 req.Costs,
			CustomCosts:           req.CustomCosts,
			Rule:                  resolved.Rule,
			Channel:               code,
			VATRate:               s.pricing.VATRate,
			FreeShippingThreshold: s.pricing.FreeShippingThreshold,
		},
		TargetNetMargin: target,
	}

	var cp domain.ChannelPrice
	if req.FixedPrice != nil {
		if *req.FixedPrice <= 0 {
			return domain.ChannelPrice{}, domain.ErrInvalidSellingPrice
		}
		cp = EvaluateAt(in, *req.FixedPrice)
	} else {
		cp = SolveChannelPrice(in)
		s.metrics.ObserveSolver(solverName, cp.Iterations, cp.Converged)
		if !cp.Converged {
			s.log.Warn("channel price solver did not converge",
				zap.String("channel", code),
				zap.Float64("target_net_margin", target),
				zap.Float64("margin_error", cp.MarginError),
			)
		}
	}

	if roundingRule != rounding.None {
		r := rounding.Round(cp.SellingPrice, roundingRule)
		rounded := EvaluateAt(in, r.Rounded)
		rounded.Iterations = cp.Iterations
		rounded.Converged = cp.Converged
		rounded.Rounding = &r
		cp = rounded
	}
	cp.RuleSource = resolved.Source

	v := s.ValidateMargins(cp, req.MinimumMargin)
	cp.Validation = &v

	span.SetAttributes(
		attribute.Float64("pricing.selling_price", cp.SellingPrice),
		attribute.Int("pricing.iterations", cp.Iterations),
		attribute.Bool("pricing.converged", cp.Converged),
	)
	return cp, nil
}

func (s *service) GenerateChannelPrices(ctx context.Context, req domain.BatchRequest) (domain.BatchResult, error) {
	if len(req.Channels) == 0 {
		return domain.BatchResult{}, domain.ErrNoChannels
	}

	result := domain.BatchResult{
		RunID:  uuid.NewString(),
		Prices: make(map[string]domain.ChannelPrice, len(req.Channels)),
		Failed: make(map[string]string),
	}
	log := s.log.With(zap.String("run_id", result.RunID))

	margins := make(map[string]float64, len(req.TargetNetMargins))
	for ch, m := range req.TargetNetMargins {
		margins[domain.NormalizeChannel(ch)] = m
	}

	for _, ch := range req.Channels {
		code := domain.NormalizeChannel(ch)
		pr := domain.PriceRequest{
			Channel:       code,
			Country:       req.Country,
			CategoryID:    req.CategoryID,
			Costs:         req.Costs,
			MinimumMargin: req.MinimumMargin,
			CustomCosts:   req.CustomCosts,
			Rounding:      req.Rounding,
		}
		if m, ok := margins[code]; ok {
			pr.TargetNetMargin = &m
		}

		cp, err := s.CalculateChannelPrice(ctx, pr)
		if err != nil {
			log.Warn("channel excluded from batch", zap.String("channel", ch), zap.Error(err))
			result.Failed[ch] = errorCode(err)
			if s.metrics != nil {
				s.metrics.BatchChannelFailure.WithLabelValues(code).Inc()
			}
			continue
		}
		result.Prices[code] = cp
	}

	log.Info("batch channel prices generated",
		zap.Int("priced", len(result.Prices)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// errorCode unwraps to the innermost error, which for domain sentinels is the
// snake_case code.
func errorCode(err error) string {
	for errors.Unwrap(err) != nil {
		err = errors.Unwrap(err)
	}
	return err.Error()
}

func (s *service) ValidateMargins(price domain.ChannelPrice, minimumMargin *float64) domain.MarginValidation {
	minimum := s.pricing.MinimumMarginPercent
	if minimumMargin != nil {
		minimum = *minimumMargin
	}
	return ValidateMargins(price, minimum)
}

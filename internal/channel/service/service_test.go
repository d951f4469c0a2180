package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/channel/service"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/config"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) FindActive(ctx context.Context, db *gorm.DB, channel, country string, categoryID *string, at time.Time) (*domain.CommissionRule, error) {
	args := m.Called(ctx, db, channel, country, categoryID, at)
	rule, _ := args.Get(0).(*domain.CommissionRule)
	return rule, args.Error(1)
}

func (m *MockRuleRepo) List(ctx context.Context, db *gorm.DB, channel string) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, db, channel)
	rules, _ := args.Get(0).([]domain.CommissionRule)
	return rules, args.Error(1)
}

func (m *MockRuleRepo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return m.Called(ctx, db, rule).Error(0)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Pricing: config.PricingConfig{
			VATRate:               0.16,
			MinimumMarginPercent:  15,
			FreeShippingThreshold: 299,
			POSCommissionPercent:  3.5,
			WebCommissionPercent:  3.6,
			WebFixedFee:           3,
			DefaultMargins:        map[string]float64{"default": 20, "pos": 35},
		},
	}
}

func newTestService(t *testing.T, repo *MockRuleRepo, rdb *redis.Client) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return service.NewService(service.ServiceParam{
		Log:    zap.NewNop(),
		Config: testConfig(),
		Repo:   repo,
		GenID:  node,
		Clock:  clock.Fixed(testNow),
		Redis:  rdb,
	})
}

func nilRule() *domain.CommissionRule { return nil }

func TestResolveRuleFallbackChain(t *testing.T) {
	ctx := context.Background()
	category := "electronics"

	t.Run("category rule wins", func(t *testing.T) {
		repo := new(MockRuleRepo)
		rule := &domain.CommissionRule{Channel: "amazon", Country: "MX", CategoryID: &category, ReferralFeePercent: 8}
		repo.On("FindActive", mock.Anything, mock.Anything, "amazon", "MX", &category, testNow).Return(rule, nil).Once()

		got, err := newTestService(t, repo, nil).ResolveRule(ctx, "Amazon", "mx", &category)
		require.NoError(t, err)
		assert.Equal(t, domain.RuleSourceCategory, got.Source)
		assert.Equal(t, 8.0, got.Rule.ReferralFeePercent)
		repo.AssertExpectations(t)
	})

	t.Run("channel rule when category misses", func(t *testing.T) {
		repo := new(MockRuleRepo)
		repo.On("FindActive", mock.Anything, mock.Anything, "amazon", "MX", &category, testNow).Return(nilRule(), nil).Once()
		repo.On("FindActive", mock.Anything, mock.Anything, "amazon", "MX", (*string)(nil), testNow).
			Return(&domain.CommissionRule{Channel: "amazon", ReferralFeePercent: 15}, nil).Once()

		got, err := newTestService(t, repo, nil).ResolveRule(ctx, "amazon", "", &category)
		require.NoError(t, err)
		assert.Equal(t, domain.RuleSourceChannel, got.Source)
		repo.AssertExpectations(t)
	})

	t.Run("default rule uses gateway rates", func(t *testing.T) {
		repo := new(MockRuleRepo)
		repo.On("FindActive", mock.Anything, mock.Anything, "web", "MX", (*string)(nil), testNow).Return(nilRule(), nil).Once()

		got, err := newTestService(t, repo, nil).ResolveRule(ctx, "web", "MX", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.RuleSourceDefault, got.Source)
		assert.Equal(t, 3.6, got.Rule.PaymentProcessingPercent)
		assert.Equal(t, 3.0, got.Rule.PaymentProcessingFixed)
		assert.Zero(t, got.Rule.ReferralFeePercent)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		repo := new(MockRuleRepo)
		repo.On("FindActive", mock.Anything, mock.Anything, "web", "MX", (*string)(nil), testNow).Return(nilRule(), errors.New("db down"))

		_, err := newTestService(t, repo, nil).ResolveRule(ctx, "web", "MX", nil)
		assert.Error(t, err)
	})

	t.Run("empty channel", func(t *testing.T) {
		_, err := newTestService(t, new(MockRuleRepo), nil).ResolveRule(ctx, "  ", "MX", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidChannel)
	})
}

func TestResolveRuleIsCached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := new(MockRuleRepo)
	repo.On("FindActive", mock.Anything, mock.Anything, "amazon", "MX", (*string)(nil), testNow).
		Return(&domain.CommissionRule{ID: 7, Channel: "amazon", Country: "MX", ReferralFeePercent: 15, IsActive: true}, nil).Once()

	svc := newTestService(t, repo, rdb)
	ctx := context.Background()

	first, err := svc.ResolveRule(ctx, "amazon", "MX", nil)
	require.NoError(t, err)
	assert.True(t, mr.Exists("commission_rule:amazon:MX:*"))

	second, err := svc.ResolveRule(ctx, "amazon", "MX", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Rule.ID, second.Rule.ID)
	assert.Equal(t, domain.RuleSourceChannel, second.Source)
	repo.AssertExpectations(t)

	// creating a rule drops cached lookups for the channel
	repo.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	_, err = svc.CreateRule(ctx, domain.CommissionRule{Channel: "amazon", ReferralFeePercent: 12, IsActive: true})
	require.NoError(t, err)
	assert.False(t, mr.Exists("commission_rule:amazon:MX:*"))
}

func TestResolveRuleFailsOpenWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	repo := new(MockRuleRepo)
	repo.On("FindActive", mock.Anything, mock.Anything, "pos", "MX", (*string)(nil), testNow).Return(nilRule(), nil)

	got, err := newTestService(t, repo, rdb).ResolveRule(context.Background(), "pos", "MX", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RuleSourceDefault, got.Source)
}

func TestCalculateChannelPrice(t *testing.T) {
	repo := new(MockRuleRepo)
	repo.On("FindActive", mock.Anything, mock.Anything, "pos", "MX", (*string)(nil), testNow).Return(nilRule(), nil)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	costs := domain.CostInputs{COG: 100, OfferFreeShipping: true}

	cp, err := svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "POS", Costs: costs})
	require.NoError(t, err)
	assert.Equal(t, "pos", cp.Channel)
	assert.Equal(t, 35.0, cp.TargetNetMargin)
	assert.Equal(t, domain.RuleSourceDefault, cp.RuleSource)
	assert.Positive(t, cp.Iterations)
	require.NotNil(t, cp.Validation)

	t.Run("rounding re-evaluates at the rounded price", func(t *testing.T) {
		rounded, err := svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: costs, Rounding: rounding.EndsIn99})
		require.NoError(t, err)
		require.NotNil(t, rounded.Rounding)
		assert.InDelta(t, 0.99, rounded.SellingPrice-float64(int(rounded.SellingPrice)), 1e-9)
		assert.InDelta(t, rounded.Rounding.Rounded-rounded.Rounding.Original, rounded.Rounding.Delta, 1e-9)
		assert.Equal(t, rounded.SellingPrice, rounded.Breakdown.SellingPrice)
	})

	t.Run("fixed price skips the solver", func(t *testing.T) {
		price := 250.0
		fixed, err := svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: costs, FixedPrice: &price})
		require.NoError(t, err)
		assert.Equal(t, 250.0, fixed.SellingPrice)
		assert.Zero(t, fixed.Iterations)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: domain.CostInputs{COG: 0}})
		assert.ErrorIs(t, err, domain.ErrInvalidCost)

		tooHigh := 100.0
		_, err = svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: costs, TargetNetMargin: &tooHigh})
		assert.ErrorIs(t, err, domain.ErrInvalidTargetMargin)

		_, err = svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: costs, Rounding: "ENDS_IN_42"})
		assert.ErrorIs(t, err, rounding.ErrUnknownRule)

		zero := 0.0
		_, err = svc.CalculateChannelPrice(ctx, domain.PriceRequest{Channel: "pos", Costs: costs, FixedPrice: &zero})
		assert.ErrorIs(t, err, domain.ErrInvalidSellingPrice)
	})
}

func TestGenerateChannelPricesIsolatesFailures(t *testing.T) {
	repo := new(MockRuleRepo)
	repo.On("FindActive", mock.Anything, mock.Anything, "pos", "MX", (*string)(nil), testNow).Return(nilRule(), nil)
	repo.On("FindActive", mock.Anything, mock.Anything, "web", "MX", (*string)(nil), testNow).Return(nilRule(), nil)
	repo.On("FindActive", mock.Anything, mock.Anything, "amazon", "MX", (*string)(nil), testNow).Return(nilRule(), errors.New("connection reset"))

	svc := newTestService(t, repo, nil)
	res, err := svc.GenerateChannelPrices(context.Background(), domain.BatchRequest{
		Channels:         []string{"pos", "amazon", "web"},
		Costs:            domain.CostInputs{COG: 100, OfferFreeShipping: true},
		TargetNetMargins: map[string]float64{"web": 25},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Prices, 2)
	assert.Contains(t, res.Prices, "pos")
	assert.Equal(t, 25.0, res.Prices["web"].TargetNetMargin)
	assert.Equal(t, "connection reset", res.Failed["amazon"])

	_, err = svc.GenerateChannelPrices(context.Background(), domain.BatchRequest{})
	assert.ErrorIs(t, err, domain.ErrNoChannels)
}

func TestCreateRuleValidates(t *testing.T) {
	svc := newTestService(t, new(MockRuleRepo), nil)

	_, err := svc.CreateRule(context.Background(), domain.CommissionRule{Channel: "amazon", ReferralFeePercent: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	_, err = svc.CreateRule(context.Background(), domain.CommissionRule{})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)
}

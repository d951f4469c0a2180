package domain

import "context"

type Service interface {
	ResolveRule(ctx context.Context, channel, country string, categoryID *string) (ResolvedRule, error)
	ListRules(ctx context.Context, channel string) ([]CommissionRule, error)
	CreateRule(ctx context.Context, rule CommissionRule) (CommissionRule, error)
	CalculateChannelPrice(ctx context.Context, req PriceRequest) (ChannelPrice, error)
	GenerateChannelPrices(ctx context.Context, req BatchRequest) (BatchResult, error)
	ValidateMargins(price ChannelPrice, minimumMargin *float64) MarginValidation
}

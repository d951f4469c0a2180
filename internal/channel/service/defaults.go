package service

import (
	"github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/config"
	"gorm.io/datatypes"
)

const defaultReferralFeePercent = 15.0

// DefaultRule is used when no stored rule matches a channel. Direct
// channels pay the configured gateway rates and no referral fee.
// Marketplaces pay a flat referral fee with no tier data, so marketplace
// fulfillment falls back to the self-ship estimate.
func DefaultRule(channel, country string, cfg config.PricingConfig) domain.CommissionRule {
	rule := domain.CommissionRule{
		Channel:          channel,
		Country:          country,
		FulfillmentType:  domain.FulfillmentSelf,
		FulfillmentTiers: datatypes.NewJSONType(domain.FulfillmentTiers{}),
		IsActive:         true,
	}

	switch channel {
	case domain.ChannelPOS:
		rule.PaymentProcessingPercent = cfg.POSCommissionPercent
		rule.PaymentProcessingFixed = cfg.POSFixedFee
	case domain.ChannelWeb:
		rule.PaymentProcessingPercent = cfg.WebCommissionPercent
		rule.PaymentProcessingFixed = cfg.WebFixedFee
	case domain.ChannelAmazonFBA:
		rule.ReferralFeePercent = defaultReferralFeePercent
		rule.FulfillmentType = domain.FulfillmentFBA
	case domain.ChannelAmazon:
		rule.ReferralFeePercent = defaultReferralFeePercent
		rule.FulfillmentType = domain.FulfillmentFBM
	case domain.ChannelMercadoLibreFull:
		rule.ReferralFeePercent = defaultReferralFeePercent
		rule.FulfillmentType = domain.FulfillmentFull
	default:
		rule.ReferralFeePercent = defaultReferralFeePercent
	}
	return rule
}

package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedCountry = "MX"

// Seeded rules use fixed ids below the snowflake range so reruns are
// no-ops and operator edits survive.
func systemCommissionRules(now time.Time) []channeldomain.CommissionRule {
	fbaTiers := channeldomain.FulfillmentTiers{
		channeldomain.SizeSmall: {
			{MaxWeight: 0.25, BaseFee: 52},
			{MaxWeight: 0.5, BaseFee: 58},
		},
		channeldomain.SizeStandard: {
			{MaxWeight: 1, BaseFee: 68, PerKgOver: 9},
			{MaxWeight: 5, BaseFee: 85, PerKgOver: 9},
			{MaxWeight: 10, BaseFee: 112, PerKgOver: 9},
		},
		channeldomain.SizeLarge: {
			{MaxWeight: 10, BaseFee: 140, PerKgOver: 11},
			{MaxWeight: 20, BaseFee: 185, PerKgOver: 11},
		},
		channeldomain.SizeOversized: {
			{MaxWeight: 30, BaseFee: 320, PerKgOver: 14},
		},
	}
	fullTiers := channeldomain.FulfillmentTiers{
		channeldomain.SizeSmall: {
			{MaxWeight: 0.5, BaseFee: 48},
		},
		channeldomain.SizeStandard: {
			{MaxWeight: 1, BaseFee: 62, PerKgOver: 8},
			{MaxWeight: 5, BaseFee: 79, PerKgOver: 8},
		},
		channeldomain.SizeLarge: {
			{MaxWeight: 15, BaseFee: 150, PerKgOver: 10},
		},
		channeldomain.SizeOversized: {
			{MaxWeight: 30, BaseFee: 290, PerKgOver: 13},
		},
	}

	rule := func(id int64, channel string, fulfillment channeldomain.FulfillmentType, tiers channeldomain.FulfillmentTiers) channeldomain.CommissionRule {
		return channeldomain.CommissionRule{
			ID:                 snowflake.ID(id),
			Channel:            channel,
			Country:            seedCountry,
			ReferralFeePercent: 15,
			FulfillmentType:    fulfillment,
			FulfillmentTiers:   datatypes.NewJSONType(tiers),
			IsActive:           true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	}

	amazon := rule(1, channeldomain.ChannelAmazon, channeldomain.FulfillmentFBM, channeldomain.FulfillmentTiers{})
	amazon.MinReferralFee = 10

	fba := rule(2, channeldomain.ChannelAmazonFBA, channeldomain.FulfillmentFBA, fbaTiers)
	fba.MinReferralFee = 10
	fba.MonthlyStoragePerCubicMeter = 620

	meli := rule(3, channeldomain.ChannelMercadoLibre, channeldomain.FulfillmentSelf, channeldomain.FulfillmentTiers{})
	meli.ReferralFeePercent = 13.5

	full := rule(4, channeldomain.ChannelMercadoLibreFull, channeldomain.FulfillmentFull, fullTiers)
	full.ReferralFeePercent = 13.5
	full.MonthlyStoragePerCubicMeter = 480

	walmart := rule(5, channeldomain.ChannelWalmart, channeldomain.FulfillmentSelf, channeldomain.FulfillmentTiers{})
	walmart.ReferralFeePercent = 12

	return []channeldomain.CommissionRule{amazon, fba, meli, full, walmart}
}

func seedCommissionRules(ctx context.Context, db *gorm.DB) (int, error) {
	seeds := systemCommissionRules(time.Now().UTC())

	var inserted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range seeds {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seeds[i])
			if result.Error != nil {
				return fmt.Errorf("seed commission rule %s: %w", seeds[i].Channel, result.Error)
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

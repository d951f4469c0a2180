package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CommissionRule is the fee schedule a channel charges in one country,
// optionally narrowed to a product category.
type CommissionRule struct {
	ID                          snowflake.ID                         `json:"id" gorm:"primaryKey"`
	Channel                     string                               `json:"channel" gorm:"type:text;not null;index:idx_commission_rules_lookup,priority:1"`
	Country                     string                               `json:"country" gorm:"type:text;not null;index:idx_commission_rules_lookup,priority:2"`
	CategoryID                  *string                              `json:"category_id,omitempty" gorm:"type:text;index:idx_commission_rules_lookup,priority:3"`
	ReferralFeePercent          float64                              `json:"referral_fee_percent" gorm:"not null;default:0"`
	MinReferralFee              float64                              `json:"min_referral_fee" gorm:"not null;default:0"`
	FulfillmentType             FulfillmentType                      `json:"fulfillment_type" gorm:"type:text;not null;default:'SELF'"`
	FulfillmentTiers            datatypes.JSONType[FulfillmentTiers] `json:"fulfillment_tiers" gorm:"type:json"`
	MonthlyStoragePerCubicMeter float64                              `json:"monthly_storage_per_cubic_meter" gorm:"not null;default:0"`
	PaymentProcessingPercent    float64                              `json:"payment_processing_percent" gorm:"not null;default:0"`
	PaymentProcessingFixed      float64                              `json:"payment_processing_fixed" gorm:"not null;default:0"`
	PerUnitFee                  float64                              `json:"per_unit_fee" gorm:"not null;default:0"`
	IsActive                    bool                                 `json:"is_active" gorm:"not null"`
	EffectiveDate               *time.Time                           `json:"effective_date,omitempty"`
	EndDate                     *time.Time                           `json:"end_date,omitempty"`
	CreatedAt                   time.Time                            `json:"created_at" gorm:"not null"`
	UpdatedAt                   time.Time                            `json:"updated_at" gorm:"not null"`
}

func (CommissionRule) TableName() string { return "commission_rules" }

// Tiers returns the fulfillment tier table, never nil.
func (r CommissionRule) Tiers() FulfillmentTiers {
	tiers := r.FulfillmentTiers.Data()
	if tiers == nil {
		return FulfillmentTiers{}
	}
	return tiers
}

// EffectiveAt reports whether the rule applies at t.
func (r CommissionRule) EffectiveAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveDate != nil && t.Before(*r.EffectiveDate) {
		return false
	}
	if r.EndDate != nil && !t.Before(*r.EndDate) {
		return false
	}
	return true
}

// RuleSource tells which lookup step produced a rule.
type RuleSource string

const (
	RuleSourceCategory RuleSource = "category"
	RuleSourceChannel  RuleSource = "channel"
	RuleSourceDefault  RuleSource = "default"
)

type ResolvedRule struct {
	Rule   CommissionRule `json:"rule"`
	Source RuleSource     `json:"source"`
}

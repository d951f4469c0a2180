package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Reason tags why a price changed.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonRule       Reason = "rule"
	ReasonBatch      Reason = "batch"
	ReasonCostUpdate Reason = "cost_update"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonManual, ReasonRule, ReasonBatch, ReasonCostUpdate:
		return true
	default:
		return false
	}
}

// PriceChange is one append-only history entry. Money and percentages are
// kept at two decimal places.
type PriceChange struct {
	ID            snowflake.ID        `json:"id" gorm:"primaryKey"`
	ProductID     string              `json:"product_id" gorm:"type:text;not null;index:idx_price_changes_product,priority:1"`
	Channel       string              `json:"channel" gorm:"type:text;not null;index:idx_price_changes_product,priority:2"`
	OldPrice      decimal.Decimal     `json:"old_price" gorm:"type:numeric(14,2);not null"`
	NewPrice      decimal.Decimal     `json:"new_price" gorm:"type:numeric(14,2);not null"`
	PercentChange decimal.Decimal     `json:"percent_change" gorm:"type:numeric(10,2);not null"`
	NetMargin     decimal.NullDecimal `json:"net_margin" gorm:"type:numeric(10,2)"`
	Reason        Reason              `json:"reason" gorm:"type:text;not null"`
	Note          string              `json:"note,omitempty" gorm:"type:text"`
	CreatedAt     time.Time           `json:"created_at" gorm:"not null;index"`
}

func (PriceChange) TableName() string { return "price_changes" }

// PercentChange is (new - old) / old * 100 at two decimals. A change from
// zero reports zero.
func PercentChange(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

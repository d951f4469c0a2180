package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Strategy is the saved pricing inputs of one product on one channel. It
// keeps the inputs only, never a resolved breakdown.
type Strategy struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	ProductID       string            `json:"product_id" gorm:"type:text;not null;uniqueIndex:ux_pricing_strategies_product_channel,priority:1"`
	Channel         string            `json:"channel" gorm:"type:text;not null;uniqueIndex:ux_pricing_strategies_product_channel,priority:2"`
	COG             float64           `json:"cog" gorm:"not null"`
	InboundShipping float64           `json:"inbound_shipping" gorm:"not null;default:0"`
	PackagingCost   float64           `json:"packaging_cost" gorm:"not null;default:0"`
	TargetNetMargin float64           `json:"target_net_margin" gorm:"not null"`
	MinimumMargin   *float64          `json:"minimum_margin,omitempty"`
	RoundingRule    string            `json:"rounding_rule" gorm:"type:text;not null;default:'NONE'"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null"`
}

func (Strategy) TableName() string { return "pricing_strategies" }

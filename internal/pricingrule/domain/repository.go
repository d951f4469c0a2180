package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *PricingRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PricingRule, error)
	// ListActive returns active rules, highest priority first.
	ListActive(ctx context.Context, db *gorm.DB) ([]PricingRule, error)
	List(ctx context.Context, db *gorm.DB) ([]PricingRule, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
}

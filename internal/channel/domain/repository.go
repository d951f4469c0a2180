package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// FindActive returns the first rule for channel and country in force at
	// the given time. A nil categoryID matches rules of any category, with
	// category-less rules preferred. Returns nil when none matches.
	FindActive(ctx context.Context, db *gorm.DB, channel, country string, categoryID *string, at time.Time) (*CommissionRule, error)
	List(ctx context.Context, db *gorm.DB, channel string) ([]CommissionRule, error)
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
}

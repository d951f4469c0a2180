package repository

import (
	"context"
	"time"

	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() channeldomain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, channel, country string, categoryID *string, at time.Time) (*channeldomain.CommissionRule, error) {
	query := db.WithContext(ctx).
		Model(&channeldomain.CommissionRule{}).
		Where("channel = ? AND country = ? AND is_active = ?", channel, country, true).
		Where("effective_date IS NULL OR effective_date <= ?", at).
		Where("end_date IS NULL OR end_date > ?", at)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	} else {
		query = query.Order("CASE WHEN category_id IS NULL THEN 0 ELSE 1 END")
	}

	var rules []channeldomain.CommissionRule
	if err := query.Order("created_at DESC").Limit(1).Find(&rules).Error; err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, channel string) ([]channeldomain.CommissionRule, error) {
	query := db.WithContext(ctx).Model(&channeldomain.CommissionRule{})
	if channel != "" {
		query = query.Where("channel = ?", channel)
	}

	var rules []channeldomain.CommissionRule
	if err := query.Order("channel ASC, created_at DESC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *channeldomain.CommissionRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

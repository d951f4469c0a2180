package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *pricingruledomain.PricingRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pricingruledomain.PricingRule, error) {
	var rules []pricingruledomain.PricingRule
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rules).Error; err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]pricingruledomain.PricingRule, error) {
	var rules []pricingruledomain.PricingRule
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]pricingruledomain.PricingRule, error) {
	var rules []pricingruledomain.PricingRule
	if err := db.WithContext(ctx).Order("priority DESC, created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).
		Model(&pricingruledomain.PricingRule{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()}).Error
}

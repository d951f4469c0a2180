package repository

import (
	"context"

	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() strategydomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, s *strategydomain.Strategy) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cog", "inbound_shipping", "packaging_cost", "target_net_margin",
			"minimum_margin", "rounding_rule", "metadata", "updated_at",
		}),
	}).Create(s).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, productID, channel string) (*strategydomain.Strategy, error) {
	var rows []strategydomain.Strategy
	err := db.WithContext(ctx).
		Where("product_id = ? AND channel = ?", productID, channel).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID string) ([]strategydomain.Strategy, error) {
	var rows []strategydomain.Strategy
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("channel ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

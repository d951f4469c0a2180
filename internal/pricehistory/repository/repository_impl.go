package repository

import (
	"context"

	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricehistorydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, change *pricehistorydomain.PriceChange) error {
	return db.WithContext(ctx).Create(change).Error
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, productID, channel string) (*pricehistorydomain.PriceChange, error) {
	var rows []pricehistorydomain.PriceChange
	err := db.WithContext(ctx).
		Where("product_id = ? AND channel = ?", productID, channel).
		Order("created_at DESC, id DESC").
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter pricehistorydomain.ListFilter, page pagination.Pagination) ([]pricehistorydomain.PriceChange, error) {
	query := db.WithContext(ctx).Model(&pricehistorydomain.PriceChange{})
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}

	query, err := pagination.ApplyNewestFirst(query, page)
	if err != nil {
		return nil, err
	}

	var rows []pricehistorydomain.PriceChange
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

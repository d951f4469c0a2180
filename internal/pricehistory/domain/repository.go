package domain

import (
	"context"

	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID string
	Channel   string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, change *PriceChange) error
	Latest(ctx context.Context, db *gorm.DB, productID, channel string) (*PriceChange, error)
	// List returns entries newest first, one more than the page size when
	// more pages exist.
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]PriceChange, error)
}

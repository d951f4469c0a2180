package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the strategy or overwrites the inputs of the existing
	// one for the same product and channel.
	Upsert(ctx context.Context, db *gorm.DB, s *Strategy) error
	Find(ctx context.Context, db *gorm.DB, productID, channel string) (*Strategy, error)
	ListByProduct(ctx context.Context, db *gorm.DB, productID string) ([]Strategy, error)
}

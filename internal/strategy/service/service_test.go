package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"github.com/railzwaylabs/pricestack/internal/strategy/repository"
	"github.com/railzwaylabs/pricestack/internal/strategy/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Strategy{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		GenID: node,
		Clock: clock.Fixed(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
	})
}

func TestSaveUpsertsPerProductAndChannel(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, domain.SaveRequest{
		ProductID:       "sku-1",
		Channel:         "Mercado Libre",
		COG:             100,
		TargetNetMargin: 20,
		RoundingRule:    "ends_in_99",
		Metadata:        map[string]any{"source": "import"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mercadolibre", first.Channel)
	assert.Equal(t, string(rounding.EndsIn99), first.RoundingRule)

	second, err := svc.Save(ctx, domain.SaveRequest{ProductID: "sku-1", Channel: "mercadolibre", COG: 120, TargetNetMargin: 25})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 120.0, second.COG)
	assert.Equal(t, 25.0, second.TargetNetMargin)

	_, err = svc.Save(ctx, domain.SaveRequest{ProductID: "sku-1", Channel: "pos", COG: 100, TargetNetMargin: 35})
	require.NoError(t, err)

	all, err := svc.ListByProduct(ctx, "sku-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "mercadolibre", all[0].Channel)

	got, err := svc.Get(ctx, "sku-1", "pos")
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.TargetNetMargin)
}

func TestSaveValidates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveRequest{Channel: "pos", COG: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = svc.Save(ctx, domain.SaveRequest{ProductID: "sku", Channel: "pos", COG: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidStrategy)

	_, err = svc.Save(ctx, domain.SaveRequest{ProductID: "sku", Channel: "pos", COG: 1, RoundingRule: "CEIL"})
	assert.ErrorIs(t, err, rounding.ErrUnknownRule)

	_, err = svc.Get(ctx, "sku", "web")
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	GenID *snowflake.Node
	Clock clock.Clock `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("strategy.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (domain.Strategy, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.Strategy{}, domain.ErrInvalidProduct
	}
	channel := channeldomain.NormalizeChannel(req.Channel)
	if channel == "" {
		return domain.Strategy{}, domain.ErrInvalidChannel
	}
	if req.COG <= 0 || req.InboundShipping < 0 || req.PackagingCost < 0 || req.TargetNetMargin >= 100 {
		return domain.Strategy{}, domain.ErrInvalidStrategy
	}
	rule, err := rounding.ParseRule(req.RoundingRule)
	if err != nil {
		return domain.Strategy{}, err
	}

	now := s.clock.Now(ctx)
	strategy := domain.Strategy{
		ID:              s.genID.Generate(),
		ProductID:       productID,
		Channel:         channel,
		COG:             req.COG,
		InboundShipping: req.InboundShipping,
		PackagingCost:   req.PackagingCost,
		TargetNetMargin: req.TargetNetMargin,
		MinimumMargin:   req.MinimumMargin,
		RoundingRule:    string(rule),
		Metadata:        datatypes.JSONMap(req.Metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Upsert(ctx, s.db, &strategy); err != nil {
		s.log.Error("failed to save pricing strategy",
			zap.String("product_id", productID),
			zap.String("channel", channel),
			zap.Error(err),
		)
		return domain.Strategy{}, err
	}

	// the stored row keeps its original id and creation time on update
	saved, err := s.repo.Find(ctx, s.db, productID, channel)
	if err != nil {
		return domain.Strategy{}, err
	}
	if saved == nil {
		return domain.Strategy{}, domain.ErrStrategyNotFound
	}
	return *saved, nil
}

func (s *Service) Get(ctx context.Context, productID, channel string) (domain.Strategy, error) {
	found, err := s.repo.Find(ctx, s.db, strings.TrimSpace(productID), channeldomain.NormalizeChannel(channel))
	if err != nil {
		return domain.Strategy{}, err
	}
	if found == nil {
		return domain.Strategy{}, domain.ErrStrategyNotFound
	}
	return *found, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Strategy, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidProduct
	}
	return s.repo.ListByProduct(ctx, s.db, productID)
}

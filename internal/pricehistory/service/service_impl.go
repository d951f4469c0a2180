package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("pricehistory.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
	}
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (domain.PriceChange, bool, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.PriceChange{}, false, domain.ErrInvalidProduct
	}
	channel := channeldomain.NormalizeChannel(req.Channel)
	if channel == "" {
		return domain.PriceChange{}, false, domain.ErrInvalidChannel
	}
	if req.NewPrice <= 0 || (req.OldPrice != nil && *req.OldPrice < 0) {
		return domain.PriceChange{}, false, domain.ErrInvalidPrice
	}
	reason := domain.Reason(strings.ToLower(strings.TrimSpace(string(req.Reason))))
	if reason == "" {
		reason = domain.ReasonManual
	}
	if !reason.Valid() {
		return domain.PriceChange{}, false, domain.ErrInvalidReason
	}

	oldPrice := decimal.Zero
	if req.OldPrice != nil {
		oldPrice = money(*req.OldPrice)
	} else {
		latest, err := s.repo.Latest(ctx, s.db, productID, channel)
		if err != nil {
			s.log.Error("failed to load latest price", zap.String("product_id", productID), zap.Error(err))
			return domain.PriceChange{}, false, err
		}
		if latest != nil {
			oldPrice = latest.NewPrice
		}
	}

	newPrice := money(req.NewPrice)
	if newPrice.Equal(oldPrice) {
		return domain.PriceChange{}, false, nil
	}

	change := domain.PriceChange{
		ID:            s.genID.Generate(),
		ProductID:     productID,
		Channel:       channel,
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		PercentChange: domain.PercentChange(oldPrice, newPrice),
		Reason:        reason,
		Note:          strings.TrimSpace(req.Note),
		CreatedAt:     s.clock.Now(ctx),
	}
	if req.NetMargin != nil {
		change.NetMargin = decimal.NewNullDecimal(money(*req.NetMargin))
	}

	if err := s.repo.Insert(ctx, s.db, &change); err != nil {
		s.log.Error("failed to record price change", zap.String("product_id", productID), zap.Error(err))
		return domain.PriceChange{}, false, err
	}

	s.log.Info("price change recorded",
		zap.String("product_id", productID),
		zap.String("channel", channel),
		zap.String("old_price", oldPrice.StringFixed(2)),
		zap.String("new_price", newPrice.StringFixed(2)),
		zap.String("reason", string(reason)),
	)
	return change, true, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{ProductID: strings.TrimSpace(req.ProductID)}
	if req.Channel != "" {
		filter.Channel = channeldomain.NormalizeChannel(req.Channel)
	}

	rows, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}

	rows, pageInfo := pagination.BuildCursorPageInfo(rows, req.Pagination.Size(), func(c domain.PriceChange) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        c.ID.String(),
			CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if rows == nil {
		rows = []domain.PriceChange{}
	}
	return domain.ListResponse{Changes: rows, PageInfo: pageInfo}, nil
}

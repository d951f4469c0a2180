package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	"go.uber.org/zap"
)

type productRef struct {
	ProductID string `json:"product_id"`
	Brand     string `json:"brand"`
	// Record appends the solved price to the product's history.
	Record bool `json:"record"`
}

func (p productRef) target(categoryID *string) *pricingruledomain.ProductTarget {
	brand := strings.TrimSpace(p.Brand)
	category := ""
	if categoryID != nil {
		category = strings.TrimSpace(*categoryID)
	}
	if brand == "" && category == "" {
		return nil
	}
	return &pricingruledomain.ProductTarget{Brand: brand, CategoryID: category}
}

type channelPriceRequest struct {
	channeldomain.PriceRequest
	productRef
}

type channelPriceResponse struct {
	channeldomain.ChannelPrice
	AppliedRule *pricingruledomain.PricingRule  `json:"applied_rule,omitempty"`
	History     *pricehistorydomain.PriceChange `json:"history,omitempty"`
}

// @Summary      Calculate Channel Price
// @Description  Solve the selling price that hits the target net margin on one channel
// @Tags         channel-prices
// @Accept       json
// @Produce      json
// @Param        as_of    query  string               false  "Evaluate rules at this instant (RFC 3339)"
// @Param        request  body   channelPriceRequest  true   "Price request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /channel-prices [post]
func (s *Server) CalculateChannelPrice(c *gin.Context) {
	var req channelPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	var resp channelPriceResponse

	if req.TargetNetMargin == nil {
		if target := req.target(req.CategoryID); target != nil {
			channel := channeldomain.NormalizeChannel(req.Channel)
			applied, err := s.ruleSvc.SeedMargin(ctx, *target, s.cfg.Pricing.DefaultMargin(channel))
			if err != nil {
				AbortWithError(c, err)
				return
			}
			if applied.Rule != nil {
				margin := applied.TargetMargin
				req.TargetNetMargin = &margin
				resp.AppliedRule = applied.Rule
			}
		}
	}

	price, err := s.channelSvc.CalculateChannelPrice(ctx, req.PriceRequest)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp.ChannelPrice = price

	if req.Record {
		reason := pricehistorydomain.ReasonManual
		if resp.AppliedRule != nil {
			reason = pricehistorydomain.ReasonRule
		}
		change, err := s.recordPrice(ctx, req.ProductID, price, reason)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		resp.History = change
	}

	respondData(c, resp)
}

type batchPriceRequest struct {
	channeldomain.BatchRequest
	productRef
}

type batchPriceResponse struct {
	channeldomain.BatchResult
	History []pricehistorydomain.PriceChange `json:"history,omitempty"`
}

// @Summary      Generate Channel Prices
// @Description  Price one product on several channels. Channels that fail are reported without failing the batch.
// @Tags         channel-prices
// @Accept       json
// @Produce      json
// @Param        request  body  batchPriceRequest  true  "Batch request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /channel-prices/batch [post]
func (s *Server) GenerateChannelPrices(c *gin.Context) {
	var req batchPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	result, err := s.channelSvc.GenerateChannelPrices(ctx, req.BatchRequest)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := batchPriceResponse{BatchResult: result}
	if req.Record {
		for _, price := range result.Prices {
			change, err := s.recordPrice(ctx, req.ProductID, price, pricehistorydomain.ReasonBatch)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			if change != nil {
				resp.History = append(resp.History, *change)
			}
		}
	}

	respondData(c, resp)
}

// recordPrice appends the price to history and returns nil when it did not
// change since the last entry.
func (s *Server) recordPrice(ctx context.Context, productID string, price channeldomain.ChannelPrice, reason pricehistorydomain.Reason) (*pricehistorydomain.PriceChange, error) {
	final := price.SellingPrice
	if price.Rounding != nil {
		final = price.Rounding.Rounded
	}
	netMargin := price.NetMargin

	change, changed, err := s.historySvc.Record(ctx, pricehistorydomain.RecordRequest{
		ProductID: productID,
		Channel:   price.Channel,
		NewPrice:  final,
		NetMargin: &netMargin,
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		s.log.Debug("price unchanged, history not recorded",
			zap.String("product_id", productID),
			zap.String("channel", price.Channel),
		)
		return nil, nil
	}
	return &change, nil
}

type validatePriceRequest struct {
	Price         channeldomain.ChannelPrice `json:"price"`
	MinimumMargin *float64                   `json:"minimum_margin"`
}

// @Summary      Validate Channel Price
// @Description  Check a solved price against the minimum margin
// @Tags         channel-prices
// @Accept       json
// @Produce      json
// @Param        request  body  validatePriceRequest  true  "Price to validate"
// @Success      200  {object}  DataResponse
// @Router       /channel-prices/validate [post]
func (s *Server) ValidateChannelPrice(c *gin.Context) {
	var req validatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	respondData(c, s.channelSvc.ValidateMargins(req.Price, req.MinimumMargin))
}

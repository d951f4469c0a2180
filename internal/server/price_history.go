package server

import (
	"github.com/gin-gonic/gin"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
)

// @Summary      Record Price Change
// @Description  Append a price to the product's history. Unchanged prices are not recorded.
// @Tags         price-history
// @Accept       json
// @Produce      json
// @Param        request  body  pricehistorydomain.RecordRequest  true  "Price change"
// @Success      201  {object}  DataResponse
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /price-history [post]
func (s *Server) RecordPriceChange(c *gin.Context) {
	var req pricehistorydomain.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	change, changed, err := s.historySvc.Record(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !changed {
		respondData(c, gin.H{"recorded": false})
		return
	}
	respondCreated(c, change)
}

type listPriceHistoryRequest struct {
	ProductID string `form:"product_id"`
	Channel   string `form:"channel"`
	pagination.Pagination
}

// @Summary      List Price History
// @Tags         price-history
// @Produce      json
// @Param        product_id  query  string  true   "Product"
// @Param        channel     query  string  false  "Channel"
// @Param        page_token  query  string  false  "Page token"
// @Param        page_size   query  int     false  "Page size"
// @Success      200  {object}  ListResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /price-history [get]
func (s *Server) ListPriceHistory(c *gin.Context) {
	var query listPriceHistoryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.historySvc.List(c.Request.Context(), pricehistorydomain.ListRequest{
		ProductID:  query.ProductID,
		Channel:    query.Channel,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Changes, &resp.PageInfo)
}

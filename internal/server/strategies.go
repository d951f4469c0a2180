package server

import (
	"github.com/gin-gonic/gin"
	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
)

// @Summary      Save Strategy
// @Description  Create or overwrite the pricing inputs of a product on a channel
// @Tags         strategies
// @Accept       json
// @Produce      json
// @Param        request  body  strategydomain.SaveRequest  true  "Strategy"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /strategies [put]
func (s *Server) SaveStrategy(c *gin.Context) {
	var req strategydomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	strategy, err := s.strategySvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, strategy)
}

// @Summary      List Strategies
// @Tags         strategies
// @Produce      json
// @Param        product_id  query  string  true  "Product"
// @Success      200  {object}  ListResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /strategies [get]
func (s *Server) ListStrategies(c *gin.Context) {
	strategies, err := s.strategySvc.ListByProduct(c.Request.Context(), c.Query("product_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, strategies, nil)
}

// @Summary      Get Strategy
// @Tags         strategies
// @Produce      json
// @Param        product_id  path  string  true  "Product"
// @Param        channel     path  string  true  "Channel"
// @Success      200  {object}  DataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /strategies/{product_id}/{channel} [get]
func (s *Server) GetStrategy(c *gin.Context) {
	strategy, err := s.strategySvc.Get(c.Request.Context(), c.Param("product_id"), c.Param("channel"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, strategy)
}

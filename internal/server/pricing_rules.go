package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
)

// @Summary      Create Pricing Rule
// @Description  Create a margin rule targeting all products, a brand or a category
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Param        request  body  pricingruledomain.CreateRequest  true  "Pricing rule"
// @Success      201  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /pricing-rules [post]
func (s *Server) CreatePricingRule(c *gin.Context) {
	var req pricingruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, rule)
}

// @Summary      List Pricing Rules
// @Tags         pricing-rules
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /pricing-rules [get]
func (s *Server) ListPricingRules(c *gin.Context) {
	rules, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, rules, nil)
}

// @Summary      Activate Pricing Rule
// @Tags         pricing-rules
// @Produce      json
// @Param        id  path  string  true  "Rule ID"
// @Success      200  {object}  DataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricing-rules/{id}/activate [post]
func (s *Server) ActivatePricingRule(c *gin.Context) {
	s.setPricingRuleActive(c, true)
}

// @Summary      Deactivate Pricing Rule
// @Tags         pricing-rules
// @Produce      json
// @Param        id  path  string  true  "Rule ID"
// @Success      200  {object}  DataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricing-rules/{id}/deactivate [post]
func (s *Server) DeactivatePricingRule(c *gin.Context) {
	s.setPricingRuleActive(c, false)
}

func (s *Server) setPricingRuleActive(c *gin.Context, active bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, errInvalidID)
		return
	}

	rule, err := s.ruleSvc.SetActive(c.Request.Context(), id, active)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, rule)
}

// @Summary      Applicable Pricing Rule
// @Description  Return the highest priority rule that applies to a product and the margin it produces
// @Tags         pricing-rules
// @Produce      json
// @Param        brand        query  string  false  "Brand"
// @Param        category_id  query  string  false  "Category"
// @Param        channel      query  string  false  "Channel whose default margin is the base"
// @Param        as_of        query  string  false  "Evaluate at this instant (RFC 3339)"
// @Success      200  {object}  DataResponse
// @Router       /pricing-rules/applicable [get]
func (s *Server) GetApplicablePricingRule(c *gin.Context) {
	target := pricingruledomain.ProductTarget{
		Brand:      strings.TrimSpace(c.Query("brand")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
	}
	base := s.cfg.Pricing.DefaultMargin(strings.ToLower(strings.TrimSpace(c.Query("channel"))))

	applied, err := s.ruleSvc.SeedMargin(c.Request.Context(), target, base)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, applied)
}

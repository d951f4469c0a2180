package server

import (
	"time"

	"github.com/gin-gonic/gin"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"gorm.io/datatypes"
)

type createCommissionRuleRequest struct {
	Channel                     string                         `json:"channel"`
	Country                     string                         `json:"country"`
	CategoryID                  *string                        `json:"category_id"`
	ReferralFeePercent          float64                        `json:"referral_fee_percent"`
	MinReferralFee              float64                        `json:"min_referral_fee"`
	FulfillmentType             channeldomain.FulfillmentType  `json:"fulfillment_type"`
	FulfillmentTiers            channeldomain.FulfillmentTiers `json:"fulfillment_tiers"`
	MonthlyStoragePerCubicMeter float64                        `json:"monthly_storage_per_cubic_meter"`
	PaymentProcessingPercent    float64                        `json:"payment_processing_percent"`
	PaymentProcessingFixed      float64                        `json:"payment_processing_fixed"`
	PerUnitFee                  float64                        `json:"per_unit_fee"`
	IsActive                    *bool                          `json:"is_active"`
	EffectiveDate               *time.Time                     `json:"effective_date"`
	EndDate                     *time.Time                     `json:"end_date"`
}

// @Summary      Create Commission Rule
// @Description  Register the fee schedule of a channel in a country
// @Tags         commission-rules
// @Accept       json
// @Produce      json
// @Param        request  body  createCommissionRuleRequest  true  "Commission rule"
// @Success      201  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /commission-rules [post]
func (s *Server) CreateCommissionRule(c *gin.Context) {
	var req createCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rule, err := s.channelSvc.CreateRule(c.Request.Context(), channeldomain.CommissionRule{
		Channel:                     req.Channel,
		Country:                     req.Country,
		CategoryID:                  req.CategoryID,
		ReferralFeePercent:          req.ReferralFeePercent,
		MinReferralFee:              req.MinReferralFee,
		FulfillmentType:             req.FulfillmentType,
		FulfillmentTiers:            datatypes.NewJSONType(req.FulfillmentTiers),
		MonthlyStoragePerCubicMeter: req.MonthlyStoragePerCubicMeter,
		PaymentProcessingPercent:    req.PaymentProcessingPercent,
		PaymentProcessingFixed:      req.PaymentProcessingFixed,
		PerUnitFee:                  req.PerUnitFee,
		IsActive:                    active,
		EffectiveDate:               req.EffectiveDate,
		EndDate:                     req.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, rule)
}

// @Summary      List Commission Rules
// @Tags         commission-rules
// @Produce      json
// @Param        channel  query  string  false  "Channel"
// @Success      200  {object}  ListResponse
// @Router       /commission-rules [get]
func (s *Server) ListCommissionRules(c *gin.Context) {
	rules, err := s.channelSvc.ListRules(c.Request.Context(), c.Query("channel"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, rules, nil)
}

// @Summary      Resolve Commission Rule
// @Description  Return the rule a price calculation would use: category, then channel, then built-in default
// @Tags         commission-rules
// @Produce      json
// @Param        channel      query  string  true   "Channel"
// @Param        country      query  string  false  "Country"
// @Param        category_id  query  string  false  "Category"
// @Param        as_of        query  string  false  "Evaluate at this instant (RFC 3339)"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /commission-rules/resolve [get]
func (s *Server) ResolveCommissionRule(c *gin.Context) {
	var categoryID *string
	if v, ok := c.GetQuery("category_id"); ok && v != "" {
		categoryID = &v
	}

	resolved, err := s.channelSvc.ResolveRule(c.Request.Context(), c.Query("channel"), c.Query("country"), categoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resolved)
}

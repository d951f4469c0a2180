package domain

import "github.com/railzwaylabs/pricestack/internal/rounding"

// CustomCost is a merchant-defined per-unit cost added to the breakdown.
type CustomCost struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// CostInputs describe the product being priced.
type CostInputs struct {
	COG               float64    `json:"cog"`
	InboundShipping   float64    `json:"inbound_shipping"`
	PackagingCost     float64    `json:"packaging_cost"`
	Weight            float64    `json:"weight"`
	Dimensions        Dimensions `json:"dimensions"`
	OfferFreeShipping bool       `json:"offer_free_shipping"`
	CompetitorPrice   *float64   `json:"competitor_price,omitempty"`
}

// Validate rejects negative costs and a non-positive cost of goods.
func (c CostInputs) Validate() error {
	if c.COG <= 0 || c.InboundShipping < 0 || c.PackagingCost < 0 || c.Weight < 0 {
		return ErrInvalidCost
	}
	if c.Dimensions.Length < 0 || c.Dimensions.Width < 0 || c.Dimensions.Height < 0 {
		return ErrInvalidCost
	}
	return nil
}

// CostBreakdown itemizes what one unit costs when sold at SellingPrice.
// Commission, fulfillment and payment amounts include VAT charged on the fee.
type CostBreakdown struct {
	SellingPrice      float64      `json:"selling_price"`
	COG               float64      `json:"cog"`
	Commission        float64      `json:"commission"`
	Fulfillment       float64      `json:"fulfillment"`
	Storage           float64      `json:"storage"`
	PaymentProcessing float64      `json:"payment_processing"`
	Packaging         float64      `json:"packaging"`
	InboundShipping   float64      `json:"inbound_shipping"`
	CustomCosts       []CustomCost `json:"custom_costs,omitempty"`
	SizeTier          SizeTier     `json:"size_tier,omitempty"`
	FreeShipping      bool         `json:"free_shipping"`
	Total             float64      `json:"total"`
}

// ChannelPrice is a solved price for one channel together with its economics.
type ChannelPrice struct {
	Channel         string            `json:"channel"`
	SellingPrice    float64           `json:"selling_price"`
	Breakdown       CostBreakdown     `json:"breakdown"`
	NetRevenue      float64           `json:"net_revenue"`
	GrossProfit     float64           `json:"gross_profit"`
	GrossMargin     float64           `json:"gross_margin"`
	NetProfit       float64           `json:"net_profit"`
	NetMargin       float64           `json:"net_margin"`
	ROI             float64           `json:"roi"`
	TargetNetMargin float64           `json:"target_net_margin"`
	Competitive     bool              `json:"competitive"`
	Iterations      int               `json:"iterations"`
	Converged       bool              `json:"converged"`
	MarginError     float64           `json:"margin_error"`
	Rounding        *rounding.Result  `json:"rounding,omitempty"`
	RuleSource      RuleSource        `json:"rule_source,omitempty"`
	Validation      *MarginValidation `json:"validation,omitempty"`
}

// MarginValidation lists the problems found with a solved price.
type MarginValidation struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// PriceRequest asks for a single channel price. When FixedPrice is set the
// solver is skipped and the economics are evaluated at that price.
type PriceRequest struct {
	Channel         string        `json:"channel"`
	Country         string        `json:"country"`
	CategoryID      *string       `json:"category_id,omitempty"`
	Costs           CostInputs    `json:"costs"`
	TargetNetMargin *float64      `json:"target_net_margin,omitempty"`
	MinimumMargin   *float64      `json:"minimum_margin,omitempty"`
	CustomCosts     []CustomCost  `json:"custom_costs,omitempty"`
	Rounding        rounding.Rule `json:"rounding,omitempty"`
	FixedPrice      *float64      `json:"fixed_price,omitempty"`
}

// BatchRequest prices one product on several channels.
type BatchRequest struct {
	Channels         []string           `json:"channels"`
	Country          string             `json:"country"`
	CategoryID       *string            `json:"category_id,omitempty"`
	Costs            CostInputs         `json:"costs"`
	TargetNetMargins map[string]float64 `json:"target_net_margins,omitempty"`
	MinimumMargin    *float64           `json:"minimum_margin,omitempty"`
	CustomCosts      []CustomCost       `json:"custom_costs,omitempty"`
	Rounding         rounding.Rule      `json:"rounding,omitempty"`
}

// BatchResult holds the channels that priced successfully. Failed maps the
// remaining channels to their error code.
type BatchResult struct {
	RunID  string                  `json:"run_id"`
	Prices map[string]ChannelPrice `json:"prices"`
	Failed map[string]string       `json:"failed,omitempty"`
}

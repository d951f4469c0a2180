package domain

import "context"

type SaveRequest struct {
	ProductID       string         `json:"product_id"`
	Channel         string         `json:"channel"`
	COG             float64        `json:"cog"`
	InboundShipping float64        `json:"inbound_shipping"`
	PackagingCost   float64        `json:"packaging_cost"`
	TargetNetMargin float64        `json:"target_net_margin"`
	MinimumMargin   *float64       `json:"minimum_margin,omitempty"`
	RoundingRule    string         `json:"rounding_rule"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type Service interface {
	Save(ctx context.Context, req SaveRequest) (Strategy, error)
	Get(ctx context.Context, productID, channel string) (Strategy, error)
	ListByProduct(ctx context.Context, productID string) ([]Strategy, error)
}

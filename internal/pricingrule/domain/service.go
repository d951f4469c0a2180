package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	pricestackdomain "github.com/railzwaylabs/pricestack/internal/pricestack/domain"
)

type CreateRequest struct {
	Name        string     `json:"name"`
	TargetType  TargetType `json:"target_type"`
	TargetValue string     `json:"target_value"`
	Action      Action     `json:"action"`
	Value       float64    `json:"value"`
	Priority    int        `json:"priority"`
	IsActive    *bool      `json:"is_active"`
	Schedule    Schedule   `json:"schedule"`
}

// Applied is the outcome of seeding with the applicable rule, if any.
type Applied struct {
	Rule         *PricingRule `json:"rule,omitempty"`
	BaseMargin   float64      `json:"base_margin"`
	TargetMargin float64      `json:"target_margin"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (PricingRule, error)
	List(ctx context.Context) ([]PricingRule, error)
	SetActive(ctx context.Context, id snowflake.ID, active bool) (PricingRule, error)
	FindApplicable(ctx context.Context, target ProductTarget) (*PricingRule, error)
	SeedMargin(ctx context.Context, target ProductTarget, baseMargin float64) (Applied, error)
	SeedStack(ctx context.Context, target ProductTarget, stack pricestackdomain.Stack) (pricestackdomain.Stack, *PricingRule, error)
}

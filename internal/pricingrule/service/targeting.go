package service

import (
	"sort"
	"time"

	"github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricestackdomain "github.com/railzwaylabs/pricestack/internal/pricestack/domain"
)

// SelectRule returns the first rule, in priority descending order, that
// applies to the product at the given time. Equal priorities keep their
// input order. Returns nil when nothing applies.
func SelectRule(rules []domain.PricingRule, target domain.ProductTarget, at time.Time) *domain.PricingRule {
	sorted := append([]domain.PricingRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	for i := range sorted {
		if sorted[i].AppliesTo(target, at) {
			rule := sorted[i]
			return &rule
		}
	}
	return nil
}

// TargetMargin applies rule to a base margin. A nil rule leaves it unchanged.
func TargetMargin(rule *domain.PricingRule, base float64) float64 {
	if rule == nil {
		return base
	}
	switch rule.Action {
	case domain.ActionSetMargin:
		return rule.Value
	case domain.ActionMultiplier:
		return base * rule.Value
	default:
		return base
	}
}

// ApplyToStack returns a copy of stack with every active MARGIN block seeded
// by rule.
func ApplyToStack(rule *domain.PricingRule, stack pricestackdomain.Stack) pricestackdomain.Stack {
	out := stack.Clone()
	if rule == nil {
		return out
	}
	for i, b := range out.Blocks {
		if !b.Active || b.Type != pricestackdomain.BlockTypeMargin || b.Basis == nil {
			continue
		}
		out.Blocks[i].Basis = b.Basis.WithValue(TargetMargin(rule, b.Value()))
	}
	return out
}

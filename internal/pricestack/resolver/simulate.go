package resolver

import (
	"github.com/railzwaylabs/pricestack/internal/pricestack/domain"
)

// Scenario is one what-if run of a stack.
type Scenario struct {
	StartValue float64 `json:"start_value"`
	Result     Result  `json:"result"`
	Summary    Summary `json:"summary"`
}

// Simulate resolves the same block definitions once per start value. The
// stack mode applies to every run.
func Simulate(stack domain.Stack, startValues []float64) ([]Scenario, error) {
	if err := stack.Validate(); err != nil {
		return nil, err
	}

	out := make([]Scenario, 0, len(startValues))
	for _, v := range startValues {
		run := stack.Clone()
		run.StartValue = v
		res, err := Resolve(run)
		if err != nil {
			return nil, err
		}
		out = append(out, Scenario{StartValue: v, Result: res, Summary: Summarize(res)})
	}
	return out, nil
}

// Summary aggregates a resolved stack for display.
type Summary struct {
	Total  float64                      `json:"total"`
	ByType map[domain.BlockType]float64 `json:"by_type"`
	// MarginPercent is the share of the total taken by MARGIN blocks. In
	// inverse mode the share is of the start (target) price.
	MarginPercent float64 `json:"margin_percent"`
}

func Summarize(res Result) Summary {
	byType := make(map[domain.BlockType]float64)
	for _, b := range res.Blocks {
		if !b.Active {
			continue
		}
		byType[b.Type] += b.CalculatedAmount
	}

	base := res.Total
	if res.Mode == domain.ModeInverse {
		base = res.StartValue
	}

	s := Summary{Total: res.Total, ByType: byType}
	if base != 0 {
		s.MarginPercent = byType[domain.BlockTypeMargin] / base * 100
	}
	return s
}

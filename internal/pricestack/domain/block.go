// Package domain holds the price block model shared by every resolver.
package domain

import (
	"strings"
)

// BlockType classifies what a block contributes to a price.
type BlockType string

const (
	BlockTypeCost     BlockType = "COST"
	BlockTypeTax      BlockType = "TAX"
	BlockTypeFee      BlockType = "FEE"
	BlockTypeMargin   BlockType = "MARGIN"
	BlockTypeDiscount BlockType = "DISCOUNT"
	BlockTypePrice    BlockType = "PRICE"
	BlockTypeShipping BlockType = "SHIPPING"
)

// ParseBlockType normalizes raw input into a known BlockType.
func ParseBlockType(raw string) (BlockType, error) {
	switch t := BlockType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case BlockTypeCost, BlockTypeTax, BlockTypeFee, BlockTypeMargin,
		BlockTypeDiscount, BlockTypePrice, BlockTypeShipping:
		return t, nil
	default:
		return "", ErrUnknownBlockType
	}
}

// Sign is the direction a block moves the running subtotal in forward mode.
// DISCOUNT subtracts; every other type adds.
func (t BlockType) Sign() float64 {
	if t == BlockTypeDiscount {
		return -1
	}
	return 1
}

// BasisKind is the wire name of a Basis variant.
type BasisKind string

const (
	BasisFixed          BasisKind = "FIXED"
	BasisPercentOfBase  BasisKind = "PERCENT_OF_BASE"
	BasisPercentOfTotal BasisKind = "PERCENT_OF_TOTAL"
)

// Basis is the rule deriving a block's monetary amount from its value.
// It is a closed set: Fixed, PercentOfBase and PercentOfTotal.
type Basis interface {
	Kind() BasisKind
	Value() float64
	// WithValue returns the same variant carrying v.
	WithValue(v float64) Basis
	// Amount evaluates the basis against the running subtotal (base) and the
	// total it refers to. Callers decide what base and total mean per mode.
	Amount(base, total float64) float64

	sealed()
}

// Fixed is a literal amount.
type Fixed float64

func (Fixed) Kind() BasisKind { return BasisFixed }
func (f Fixed) Value() float64 { return float64(f) }
func (Fixed) WithValue(v float64) Basis { return Fixed(v) }
func (f Fixed) Amount(_, _ float64) float64 { return float64(f) }
func (Fixed) sealed() {}

// PercentOfBase is a percentage of the subtotal accumulated before the block.
type PercentOfBase float64

func (PercentOfBase) Kind() BasisKind { return BasisPercentOfBase }
func (p PercentOfBase) Value() float64 { return float64(p) }
func (PercentOfBase) WithValue(v float64) Basis { return PercentOfBase(v) }
func (p PercentOfBase) Amount(base, _ float64) float64 { return base * float64(p) / 100 }
func (PercentOfBase) sealed() {}

// PercentOfTotal is a percentage of the final price the stack produces.
type PercentOfTotal float64

func (PercentOfTotal) Kind() BasisKind { return BasisPercentOfTotal }
func (p PercentOfTotal) Value() float64 { return float64(p) }
func (PercentOfTotal) WithValue(v float64) Basis { return PercentOfTotal(v) }
func (p PercentOfTotal) Amount(_, total float64) float64 { return total * float64(p) / 100 }
func (PercentOfTotal) sealed() {}

// NewBasis builds the variant named by kind.
func NewBasis(kind string, value float64) (Basis, error) {
	switch BasisKind(strings.ToUpper(strings.TrimSpace(kind))) {
	case BasisFixed:
		return Fixed(value), nil
	case BasisPercentOfBase:
		return PercentOfBase(value), nil
	case BasisPercentOfTotal:
		return PercentOfTotal(value), nil
	default:
		return nil, ErrUnknownBasis
	}
}

// Block is one line of a price stack.
//
// CalculatedAmount and SubtotalAfter are outputs. Resolvers overwrite them on
// every run and never read them back.
type Block struct {
	ID     string
	Label  string
	Type   BlockType
	Basis  Basis
	Active bool
	Locked bool

	CalculatedAmount float64
	SubtotalAfter    float64
}

// Value is a shorthand for b.Basis.Value(). A nil basis reads as zero.
func (b Block) Value() float64 {
	if b.Basis == nil {
		return 0
	}
	return b.Basis.Value()
}

// IsVAT reports whether the block is a value-added tax embedded in a
// tax-inclusive price (labels such as "IVA 16%" or "VAT").
func (b Block) IsVAT() bool {
	if b.Type != BlockTypeTax {
		return false
	}
	label := strings.ToUpper(b.Label)
	return strings.Contains(label, "IVA") || strings.Contains(label, "VAT")
}

// CloneBlocks returns an independent copy with derived fields cleared.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		b.CalculatedAmount = 0
		b.SubtotalAfter = 0
		out[i] = b
	}
	return out
}

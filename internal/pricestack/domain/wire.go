package domain

import (
	"encoding/json"
	"strings"
)

// BlockPayload is the JSON shape of a block, shared by the HTTP API and the
// strategy store.
type BlockPayload struct {
	ID               string   `json:"id,omitempty"`
	Label            string   `json:"label"`
	Type             string   `json:"type"`
	Basis            string   `json:"basis"`
	Value            float64  `json:"value"`
	Active           *bool    `json:"active,omitempty"`
	IsLocked         bool     `json:"is_locked,omitempty"`
	CalculatedAmount *float64 `json:"calculated_amount,omitempty"`
	SubtotalAfter    *float64 `json:"subtotal_after,omitempty"`
}

// ToBlock parses the payload. Derived amounts in the payload are ignored.
// A missing active flag means active.
func (p BlockPayload) ToBlock() (Block, error) {
	blockType, err := ParseBlockType(p.Type)
	if err != nil {
		return Block{}, err
	}
	basis, err := NewBasis(p.Basis, p.Value)
	if err != nil {
		return Block{}, err
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return Block{
		ID:     strings.TrimSpace(p.ID),
		Label:  strings.TrimSpace(p.Label),
		Type:   blockType,
		Basis:  basis,
		Active: active,
		Locked: p.IsLocked,
	}, nil
}

// NewBlockPayload renders a resolved block.
func NewBlockPayload(b Block) BlockPayload {
	active := b.Active
	amount := b.CalculatedAmount
	subtotal := b.SubtotalAfter
	p := BlockPayload{
		ID:               b.ID,
		Label:            b.Label,
		Type:             string(b.Type),
		Value:            b.Value(),
		Active:           &active,
		IsLocked:         b.Locked,
		CalculatedAmount: &amount,
		SubtotalAfter:    &subtotal,
	}
	if b.Basis != nil {
		p.Basis = string(b.Basis.Kind())
	}
	return p
}

// ParseBlocks converts payloads in order, failing on the first malformed one.
func ParseBlocks(payloads []BlockPayload) ([]Block, error) {
	blocks := make([]Block, 0, len(payloads))
	for _, p := range payloads {
		b, err := p.ToBlock()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// BlockPayloads renders blocks in order.
func BlockPayloads(blocks []Block) []BlockPayload {
	out := make([]BlockPayload, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, NewBlockPayload(b))
	}
	return out
}

func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(NewBlockPayload(b))
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var p BlockPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	parsed, err := p.ToBlock()
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

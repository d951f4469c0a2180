package domain

import "errors"

var (
	ErrInvalidChannel      = errors.New("invalid_channel")
	ErrInvalidCost         = errors.New("invalid_cost")
	ErrInvalidTargetMargin = errors.New("invalid_target_margin")
	ErrInvalidSellingPrice = errors.New("invalid_selling_price")
	ErrInvalidRule         = errors.New("invalid_commission_rule")
	ErrNoChannels          = errors.New("no_channels")
)

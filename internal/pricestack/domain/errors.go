package domain

import "errors"

var (
	ErrUnknownBasis       = errors.New("unknown_basis")
	ErrUnknownBlockType   = errors.New("unknown_block_type")
	ErrUnknownMode        = errors.New("unknown_stack_mode")
	ErrMissingBasis       = errors.New("missing_basis")
	ErrNoMarginBlock      = errors.New("no_margin_block")
	ErrInvalidTargetPrice = errors.New("invalid_target_price")
	ErrInvalidStartValue  = errors.New("invalid_start_value")
)

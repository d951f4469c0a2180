package domain

import "errors"

var (
	ErrInvalidProduct   = errors.New("invalid_product")
	ErrInvalidChannel   = errors.New("invalid_channel")
	ErrInvalidStrategy  = errors.New("invalid_strategy")
	ErrStrategyNotFound = errors.New("strategy_not_found")
)

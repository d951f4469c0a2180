package domain

import "errors"

var (
	ErrInvalidProduct = errors.New("invalid_product")
	ErrInvalidChannel = errors.New("invalid_channel")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidReason  = errors.New("invalid_reason")
)

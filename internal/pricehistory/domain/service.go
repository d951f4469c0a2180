package domain

import (
	"context"

	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
)

// RecordRequest logs a new price. When OldPrice is nil the latest recorded
// price for the product and channel is used.
type RecordRequest struct {
	ProductID string   `json:"product_id"`
	Channel   string   `json:"channel"`
	OldPrice  *float64 `json:"old_price,omitempty"`
	NewPrice  float64  `json:"new_price"`
	NetMargin *float64 `json:"net_margin,omitempty"`
	Reason    Reason   `json:"reason"`
	Note      string   `json:"note,omitempty"`
}

type ListRequest struct {
	ProductID string
	Channel   string
	pagination.Pagination
}

type ListResponse struct {
	Changes  []PriceChange       `json:"changes"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// Record appends an entry and reports false when the price did not
	// change.
	Record(ctx context.Context, req RecordRequest) (PriceChange, bool, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

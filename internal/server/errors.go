package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricestackdomain "github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"github.com/railzwaylabs/pricestack/pkg/db/pagination"
)

var (
	errInvalidRequest = errors.New("invalid_request")
	errInvalidAsOf    = errors.New("invalid_as_of")
	errInvalidID      = errors.New("invalid_id")
)

func invalidRequestError() error {
	return errInvalidRequest
}

var validationErrors = []error{
	errInvalidRequest,
	errInvalidAsOf,
	errInvalidID,
	pagination.ErrInvalidPageToken,
	rounding.ErrUnknownRule,

	pricestackdomain.ErrUnknownBasis,
	pricestackdomain.ErrUnknownBlockType,
	pricestackdomain.ErrUnknownMode,
	pricestackdomain.ErrMissingBasis,
	pricestackdomain.ErrNoMarginBlock,
	pricestackdomain.ErrInvalidTargetPrice,
	pricestackdomain.ErrInvalidStartValue,

	channeldomain.ErrInvalidChannel,
	channeldomain.ErrInvalidCost,
	channeldomain.ErrInvalidTargetMargin,
	channeldomain.ErrInvalidSellingPrice,
	channeldomain.ErrInvalidRule,
	channeldomain.ErrNoChannels,

	pricingruledomain.ErrInvalidRule,
	pricingruledomain.ErrInvalidTargetType,
	pricingruledomain.ErrInvalidAction,
	pricingruledomain.ErrInvalidSchedule,

	strategydomain.ErrInvalidProduct,
	strategydomain.ErrInvalidChannel,
	strategydomain.ErrInvalidStrategy,

	pricehistorydomain.ErrInvalidProduct,
	pricehistorydomain.ErrInvalidChannel,
	pricehistorydomain.ErrInvalidPrice,
	pricehistorydomain.ErrInvalidReason,
}

var notFoundErrors = []error{
	pricingruledomain.ErrRuleNotFound,
	strategydomain.ErrStrategyNotFound,
}

func matchesAny(err error, targets []error) (error, bool) {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

// AbortWithError writes the error envelope. Domain validation errors map to
// 400 and lookups of missing records to 404, both with the sentinel as code.
// Anything else is a 500 whose cause is attached to the context for the
// request logger.
func AbortWithError(c *gin.Context, err error) {
	if target, ok := matchesAny(err, validationErrors); ok {
		abortJSON(c, http.StatusBadRequest, target.Error(), err.Error())
		return
	}
	if target, ok := matchesAny(err, notFoundErrors); ok {
		abortJSON(c, http.StatusNotFound, target.Error(), err.Error())
		return
	}

	_ = c.Error(err)
	abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

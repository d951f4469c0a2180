package server

import (
	"github.com/gin-gonic/gin"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricestackdomain "github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	pricestackservice "github.com/railzwaylabs/pricestack/internal/pricestack/service"
	"github.com/railzwaylabs/pricestack/internal/rounding"
)

type stackRequest struct {
	StartValue float64                         `json:"start_value"`
	Mode       string                          `json:"mode"`
	Blocks     []pricestackdomain.BlockPayload `json:"blocks"`
}

func (r stackRequest) toStack() (pricestackdomain.Stack, error) {
	mode, err := pricestackdomain.ParseMode(r.Mode)
	if err != nil {
		return pricestackdomain.Stack{}, err
	}
	blocks, err := pricestackdomain.ParseBlocks(r.Blocks)
	if err != nil {
		return pricestackdomain.Stack{}, err
	}
	return pricestackdomain.Stack{StartValue: r.StartValue, Mode: mode, Blocks: blocks}, nil
}

type resolveStackRequest struct {
	stackRequest
	Rounding rounding.Rule                    `json:"rounding"`
	Product  *pricingruledomain.ProductTarget `json:"product"`
}

// @Summary      Resolve Stack
// @Description  Resolve a price stack forward from cost or inverse from a target price
// @Tags         stacks
// @Accept       json
// @Produce      json
// @Param        as_of    query  string               false  "Evaluate pricing rules at this instant (RFC 3339)"
// @Param        request  body   resolveStackRequest  true   "Stack"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /stacks/resolve [post]
func (s *Server) ResolveStack(c *gin.Context) {
	var req resolveStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stack, err := req.toStack()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.stackSvc.Resolve(c.Request.Context(), pricestackservice.ResolveRequest{
		Stack:    stack,
		Rounding: req.Rounding,
		Product:  req.Product,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

type lockStackRequest struct {
	stackRequest
	TargetPrice float64 `json:"target_price"`
}

// @Summary      Lock Price
// @Description  Solve the margin block so the stack lands on a fixed selling price
// @Tags         stacks
// @Accept       json
// @Produce      json
// @Param        request  body  lockStackRequest  true  "Stack and target price"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /stacks/lock [post]
func (s *Server) LockStack(c *gin.Context) {
	var req lockStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stack, err := req.toStack()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.stackSvc.Lock(c.Request.Context(), stack, req.TargetPrice)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

type simulateStackRequest struct {
	stackRequest
	StartValues []float64 `json:"start_values"`
}

// @Summary      Simulate Stack
// @Description  Resolve the same stack for several start values
// @Tags         stacks
// @Accept       json
// @Produce      json
// @Param        request  body  simulateStackRequest  true  "Stack and start values"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /stacks/simulate [post]
func (s *Server) SimulateStack(c *gin.Context) {
	var req simulateStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stack, err := req.toStack()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	scenarios, err := s.stackSvc.Simulate(c.Request.Context(), stack, req.StartValues)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, scenarios, nil)
}

type roundingRequest struct {
	Value float64       `json:"value"`
	Rule  rounding.Rule `json:"rule"`
}

// @Summary      Round Price
// @Description  Apply a price-ending rule to a value
// @Tags         rounding
// @Accept       json
// @Produce      json
// @Param        request  body  roundingRequest  true  "Value and rule"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /rounding [post]
func (s *Server) ApplyRounding(c *gin.Context) {
	var req roundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := rounding.ParseRule(string(req.Rule))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, rounding.Round(req.Value, rule))
}

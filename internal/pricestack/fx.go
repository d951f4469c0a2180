package pricestack

import (
	"github.com/railzwaylabs/pricestack/internal/pricestack/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricestack.service",
	fx.Provide(service.New),
)

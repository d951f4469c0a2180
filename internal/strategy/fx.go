package strategy

import (
	"github.com/railzwaylabs/pricestack/internal/strategy/repository"
	"github.com/railzwaylabs/pricestack/internal/strategy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("strategy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

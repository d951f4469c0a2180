package pricehistory

import (
	"github.com/railzwaylabs/pricestack/internal/pricehistory/repository"
	"github.com/railzwaylabs/pricestack/internal/pricehistory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricehistory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

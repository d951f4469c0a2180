package channel

import (
	"github.com/railzwaylabs/pricestack/internal/channel/repository"
	"github.com/railzwaylabs/pricestack/internal/channel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("channel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

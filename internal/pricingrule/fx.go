package pricingrule

import (
	"github.com/railzwaylabs/pricestack/internal/pricingrule/repository"
	"github.com/railzwaylabs/pricestack/internal/pricingrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

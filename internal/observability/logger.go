package observability

import (
	"github.com/railzwaylabs/pricestack/internal/config"
	"go.uber.org/zap"
)

// NewLogger builds a JSON logger in production and a console logger elsewhere.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", cfg.AppName)), nil
}

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/pricestack/internal/bootstrap"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/railzwaylabs/pricestack/internal/config"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricestackservice "github.com/railzwaylabs/pricestack/internal/pricestack/service"
	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServerParams struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Redis       *redis.Client        `optional:"true"`
	Gatherer    prometheus.Gatherer  `optional:"true"`
	SchemaGate  bootstrap.SchemaGate `optional:"true"`
	StackSvc    *pricestackservice.Service
	ChannelSvc  channeldomain.Service
	RuleSvc     pricingruledomain.Service
	StrategySvc strategydomain.Service
	HistorySvc  pricehistorydomain.Service
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	redis       *redis.Client
	gatherer    prometheus.Gatherer
	schemaGate  bootstrap.SchemaGate
	stackSvc    *pricestackservice.Service
	channelSvc  channeldomain.Service
	ruleSvc     pricingruledomain.Service
	strategySvc strategydomain.Service
	historySvc  pricehistorydomain.Service
}

func NewServer(p ServerParams) *Server {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := p.Log.Named("http.server")
	engine := gin.New()
	engine.Use(requestID(), requestLogger(log), recovery(log))

	s := &Server{
		engine:      engine,
		cfg:         p.Cfg,
		log:         log,
		db:          p.DB,
		redis:       p.Redis,
		gatherer:    p.Gatherer,
		schemaGate:  p.SchemaGate,
		stackSvc:    p.StackSvc,
		channelSvc:  p.ChannelSvc,
		ruleSvc:     p.RuleSvc,
		strategySvc: p.StrategySvc,
		historySvc:  p.HistorySvc,
	}
	s.RegisterSystemRoutes()
	s.RegisterAPIRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(asOfContext())

	stacks := v1.Group("/stacks")
	stacks.POST("/resolve", s.ResolveStack)
	stacks.POST("/lock", s.LockStack)
	stacks.POST("/simulate", s.SimulateStack)

	prices := v1.Group("/channel-prices")
	prices.POST("", s.CalculateChannelPrice)
	prices.POST("/batch", s.GenerateChannelPrices)
	prices.POST("/validate", s.ValidateChannelPrice)

	v1.POST("/rounding", s.ApplyRounding)

	commission := v1.Group("/commission-rules")
	commission.GET("", s.ListCommissionRules)
	commission.POST("", s.CreateCommissionRule)
	commission.GET("/resolve", s.ResolveCommissionRule)

	rules := v1.Group("/pricing-rules")
	rules.GET("", s.ListPricingRules)
	rules.POST("", s.CreatePricingRule)
	rules.GET("/applicable", s.GetApplicablePricingRule)
	rules.POST("/:id/activate", s.ActivatePricingRule)
	rules.POST("/:id/deactivate", s.DeactivatePricingRule)

	strategies := v1.Group("/strategies")
	strategies.PUT("", s.SaveStrategy)
	strategies.GET("", s.ListStrategies)
	strategies.GET("/:product_id/:channel", s.GetStrategy)

	history := v1.Group("/price-history")
	history.POST("", s.RecordPriceChange)
	history.GET("", s.ListPriceHistory)
}

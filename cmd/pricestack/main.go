package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricestack/internal/bootstrap"
	"github.com/railzwaylabs/pricestack/internal/channel"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	channelservice "github.com/railzwaylabs/pricestack/internal/channel/service"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/config"
	"github.com/railzwaylabs/pricestack/internal/migration"
	"github.com/railzwaylabs/pricestack/internal/observability"
	"github.com/railzwaylabs/pricestack/internal/pricehistory"
	"github.com/railzwaylabs/pricestack/internal/pricestack"
	"github.com/railzwaylabs/pricestack/internal/pricingrule"
	"github.com/railzwaylabs/pricestack/internal/redis"
	"github.com/railzwaylabs/pricestack/internal/rounding"
	"github.com/railzwaylabs/pricestack/internal/server"
	"github.com/railzwaylabs/pricestack/internal/strategy"
	"github.com/railzwaylabs/pricestack/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pricestack",
		Short:   "Multi-channel retail pricing engine",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newQuoteCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations, seed commission rules and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pricing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

type quoteFlags struct {
	channel      string
	country      string
	categoryID   string
	cog          float64
	inbound      float64
	packaging    float64
	weight       float64
	length       float64
	width        float64
	height       float64
	freeShipping bool
	margin       float64
	rounding     string
	fixedPrice   float64
}

func newQuoteCmd() *cobra.Command {
	var f quoteFlags
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price one product on one channel and print the breakdown as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := channeldomain.PriceRequest{
				Channel: f.channel,
				Country: f.country,
				Costs: channeldomain.CostInputs{
					COG:               f.cog,
					InboundShipping:   f.inbound,
					PackagingCost:     f.packaging,
					Weight:            f.weight,
					Dimensions:        channeldomain.Dimensions{Length: f.length, Width: f.width, Height: f.height},
					OfferFreeShipping: f.freeShipping,
				},
				Rounding: rounding.Rule(f.rounding),
			}
			if f.categoryID != "" {
				req.CategoryID = &f.categoryID
			}
			if cmd.Flags().Changed("margin") {
				req.TargetNetMargin = &f.margin
			}
			if cmd.Flags().Changed("fixed-price") {
				req.FixedPrice = &f.fixedPrice
			}
			return runQuote(cmd, req)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.channel, "channel", "", "sales channel (pos, web, amazon, amazon_fba, mercadolibre, mercadolibre_full, walmart)")
	flags.StringVar(&f.country, "country", channelservice.DefaultCountry, "country of the commission rule")
	flags.StringVar(&f.categoryID, "category", "", "product category id")
	flags.Float64Var(&f.cog, "cog", 0, "cost of goods")
	flags.Float64Var(&f.inbound, "inbound", 0, "inbound shipping per unit")
	flags.Float64Var(&f.packaging, "packaging", 0, "packaging cost per unit")
	flags.Float64Var(&f.weight, "weight", 0, "package weight in kg")
	flags.Float64Var(&f.length, "length", 0, "package length in cm")
	flags.Float64Var(&f.width, "width", 0, "package width in cm")
	flags.Float64Var(&f.height, "height", 0, "package height in cm")
	flags.BoolVar(&f.freeShipping, "free-shipping", false, "offer free shipping")
	flags.Float64Var(&f.margin, "margin", 0, "target net margin percent (defaults to the channel's configured margin)")
	flags.StringVar(&f.rounding, "rounding", "", "rounding rule, e.g. ENDS_IN_99")
	flags.Float64Var(&f.fixedPrice, "fixed-price", 0, "evaluate at this price instead of solving")
	_ = cmd.MarkFlagRequired("channel")
	_ = cmd.MarkFlagRequired("cog")
	return cmd
}

func runMigrate() error {
	app := fx.New(
		fx.WithLogger(newFxLogger),
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		fx.WithLogger(newFxLogger),
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		bootstrap.Module,
		fx.Invoke(bootstrap.EnforceSchemaGate),
		channel.Module,
		pricingrule.Module,
		strategy.Module,
		pricehistory.Module,
		pricestack.Module,
		server.Module,
	)
	app.Run()
}

func runQuote(cmd *cobra.Command, req channeldomain.PriceRequest) error {
	var svc channeldomain.Service
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		channel.Module,
		fx.Populate(&svc),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("quote failed: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	price, err := svc.CalculateChannelPrice(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(price)
}

func newFxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	channelrepository "github.com/railzwaylabs/pricestack/internal/channel/repository"
	channelservice "github.com/railzwaylabs/pricestack/internal/channel/service"
	"github.com/railzwaylabs/pricestack/internal/config"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	pricehistoryrepository "github.com/railzwaylabs/pricestack/internal/pricehistory/repository"
	pricehistoryservice "github.com/railzwaylabs/pricestack/internal/pricehistory/service"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricingrulerepository "github.com/railzwaylabs/pricestack/internal/pricingrule/repository"
	pricingruleservice "github.com/railzwaylabs/pricestack/internal/pricingrule/service"
	pricestackservice "github.com/railzwaylabs/pricestack/internal/pricestack/service"
	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
	strategyrepository "github.com/railzwaylabs/pricestack/internal/strategy/repository"
	strategyservice "github.com/railzwaylabs/pricestack/internal/strategy/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testConfig() config.Config {
	return config.Config{
		Pricing: config.PricingConfig{
			VATRate:               0.16,
			MinimumMarginPercent:  15,
			FreeShippingThreshold: 299,
			WebCommissionPercent:  3.6,
			WebFixedFee:           3,
			DefaultMargins:        map[string]float64{"default": 20},
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&channeldomain.CommissionRule{},
		&pricingruledomain.PricingRule{},
		&strategydomain.Strategy{},
		&pricehistorydomain.PriceChange{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := testConfig()

	ruleSvc := pricingruleservice.New(pricingruleservice.Params{
		DB: db, Log: log, Repo: pricingrulerepository.Provide(), GenID: node,
	})

	return NewServer(ServerParams{
		Cfg: cfg,
		Log: log,
		DB:  db,
		StackSvc: pricestackservice.New(pricestackservice.Params{
			Log: log, Config: cfg, Rules: ruleSvc,
		}),
		ChannelSvc: channelservice.NewService(channelservice.ServiceParam{
			DB: db, Log: log, Config: cfg, Repo: channelrepository.Provide(), GenID: node,
		}),
		RuleSvc: ruleSvc,
		StrategySvc: strategyservice.New(strategyservice.Params{
			DB: db, Log: log, Repo: strategyrepository.Provide(), GenID: node,
		}),
		HistorySvc: pricehistoryservice.New(pricehistoryservice.Params{
			DB: db, Log: log, Repo: pricehistoryrepository.Provide(), GenID: node,
		}),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Engine().ServeHTTP(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error.Code
}

func TestResolveStackEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/stacks/resolve", gin.H{
		"start_value": 100,
		"rounding":    "ENDS_IN_99",
		"blocks": []gin.H{
			{"label": "Margin", "type": "MARGIN", "basis": "PERCENT_OF_TOTAL", "value": 20},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	data := decodeData[struct {
		Result struct {
			Total     float64 `json:"total"`
			Converged bool    `json:"converged"`
		} `json:"result"`
		Rounding struct {
			Rounded float64 `json:"rounded"`
		} `json:"rounding"`
	}](t, resp)
	assert.InDelta(t, 125.0, data.Result.Total, 0.01)
	assert.True(t, data.Result.Converged)
	assert.InDelta(t, 125.99, data.Rounding.Rounded, 1e-9)
}

func TestResolveStackRejectsUnknownBasis(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/stacks/resolve", gin.H{
		"start_value": 100,
		"blocks":      []gin.H{{"type": "FEE", "basis": "PERCENT_OF_MOOD", "value": 1}},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "unknown_basis", errorCode(t, resp))
}

func TestLockStackEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/stacks/lock", gin.H{
		"start_value":  100,
		"target_price": 232,
		"blocks": []gin.H{
			{"label": "Label", "type": "FEE", "basis": "FIXED", "value": 20},
			{"label": "Margin", "type": "MARGIN", "basis": "PERCENT_OF_TOTAL", "value": 0},
			{"label": "IVA", "type": "TAX", "basis": "PERCENT_OF_BASE", "value": 16},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	data := decodeData[struct {
		NetPrice  float64 `json:"net_price"`
		HardCosts float64 `json:"hard_costs"`
	}](t, resp)
	assert.InDelta(t, 200.0, data.NetPrice, 1e-9)
	assert.InDelta(t, 23.2, data.HardCosts, 1e-9)
}

func TestSimulateRequiresStartValues(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/stacks/simulate", gin.H{
		"blocks": []gin.H{{"type": "MARGIN", "basis": "PERCENT_OF_TOTAL", "value": 20}},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_start_value", errorCode(t, resp))
}

func TestRoundingEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/rounding", gin.H{"value": 123.4, "rule": "nearest_5"})
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData[struct {
		Rounded float64 `json:"rounded"`
	}](t, resp)
	assert.InDelta(t, 125.0, data.Rounded, 1e-9)

	resp = doJSON(t, s, http.MethodPost, "/v1/rounding", gin.H{"value": 1, "rule": "ROUND_UP_MAYBE"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "unknown_rounding_rule", errorCode(t, resp))
}

func TestChannelPriceRecordsHistory(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/channel-prices", gin.H{
		"channel":           "Web",
		"costs":             gin.H{"cog": 100},
		"target_net_margin": 20,
		"product_id":        "sku-1",
		"record":            true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	price := decodeData[struct {
		Channel      string  `json:"channel"`
		SellingPrice float64 `json:"selling_price"`
		History      *struct {
			ProductID string `json:"product_id"`
			Reason    string `json:"reason"`
		} `json:"history"`
	}](t, resp)
	assert.Equal(t, channeldomain.ChannelWeb, price.Channel)
	assert.Greater(t, price.SellingPrice, 100.0)
	require.NotNil(t, price.History)
	assert.Equal(t, "manual", price.History.Reason)

	resp = doJSON(t, s, http.MethodGet, "/v1/price-history?product_id=sku-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	changes := decodeData[[]map[string]any](t, resp)
	assert.Len(t, changes, 1)
}

func TestChannelPriceSeedsMarginFromPricingRule(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/pricing-rules", gin.H{
		"name":         "Acme premium",
		"target_type":  "BRAND",
		"target_value": "Acme",
		"action":       "SET_MARGIN",
		"value":        30,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = doJSON(t, s, http.MethodPost, "/v1/channel-prices", gin.H{
		"channel": "web",
		"costs":   gin.H{"cog": 100},
		"brand":   "acme",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	price := decodeData[struct {
		TargetNetMargin float64         `json:"target_net_margin"`
		AppliedRule     *map[string]any `json:"applied_rule"`
	}](t, resp)
	assert.Equal(t, 30.0, price.TargetNetMargin)
	assert.NotNil(t, price.AppliedRule)
}

func TestBatchReportsFailedChannels(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/channel-prices/batch", gin.H{
		"channels":           []string{"web", "pos"},
		"costs":              gin.H{"cog": 100},
		"target_net_margins": gin.H{"pos": 150},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeData[struct {
		RunID  string            `json:"run_id"`
		Prices map[string]any    `json:"prices"`
		Failed map[string]string `json:"failed"`
	}](t, resp)
	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, result.Prices, "web")
	assert.Equal(t, "invalid_target_margin", result.Failed["pos"])
}

func TestPricingRuleActivation(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/v1/pricing-rules/not-a-number/deactivate", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_id", errorCode(t, resp))

	resp = doJSON(t, s, http.MethodPost, "/v1/pricing-rules/42/deactivate", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "pricing_rule_not_found", errorCode(t, resp))
}

func TestStrategyRoundTrip(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/v1/strategies/sku-1/web", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(t, s, http.MethodPut, "/v1/strategies", gin.H{
		"product_id":        "sku-1",
		"channel":           "web",
		"cog":               100,
		"target_net_margin": 25,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doJSON(t, s, http.MethodGet, "/v1/strategies/sku-1/web", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeData[struct {
		TargetNetMargin float64 `json:"target_net_margin"`
	}](t, resp)
	assert.Equal(t, 25.0, got.TargetNetMargin)
}

func TestInvalidAsOfIsRejected(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/v1/commission-rules/resolve?channel=amazon&as_of=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_as_of", errorCode(t, resp))
}

func TestResolveCommissionRuleFallsBackToDefault(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/v1/commission-rules/resolve?channel=amazon", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decodeData[channeldomain.ResolvedRule](t, resp)
	assert.Equal(t, channeldomain.RuleSourceDefault, got.Source)
	assert.Equal(t, 15.0, got.Rule.ReferralFeePercent)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)

	resp = doJSON(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

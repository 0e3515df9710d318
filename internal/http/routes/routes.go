package routes

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"exchangeapi/internal/http/handlers"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/http/middleware"
	"exchangeapi/internal/logger"
	"exchangeapi/internal/metrics"
	"exchangeapi/internal/ratelimit"
)

// Route is one entry of the API dispatch table.
type Route struct {
	Name    string
	Method  string
	Path    string
	Handler fasthttp.RequestHandler
}

// Table lists the API operations in match order, relative to the prefix.
func Table(h *handlers.Exchanges) []Route {
	return []Route{
		{Name: "create", Method: fasthttp.MethodPost, Path: "/create", Handler: h.Create},
		{Name: "status", Method: fasthttp.MethodGet, Path: "/status/{code}", Handler: h.Status},
		{Name: "list", Method: fasthttp.MethodGet, Path: "/list", Handler: h.List},
	}
}

type Deps struct {
	// Prefix is prepended to every table path; "" mounts at the root.
	Prefix    string
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Validator middleware.CredentialValidator
	Guard     *ratelimit.Guard
	Exchanges handlers.ExchangeService
}

// NewAPI builds the public API handler. Anything outside the table,
// including a known path with another method, answers 404.
func NewAPI(d Deps) fasthttp.RequestHandler {
	r := router.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false
	r.HandleOPTIONS = false
	r.NotFound = handlers.NotFound

	h := handlers.NewExchanges(d.Exchanges, d.Log, d.Metrics)
	for _, rt := range Table(h) {
		r.Handle(rt.Method, d.Prefix+rt.Path, named(rt.Name, rt.Handler))
	}

	handler := middleware.MerchantAuth(d.Validator, d.Guard, d.Metrics, d.Log)(r.Handler)
	handler = middleware.Recover(d.Log)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestLogger(d.Log, d.Metrics)(handler)
	return middleware.RequestID(d.Log)(handler)
}

// NewOps builds the operations listener: health and Prometheus metrics.
func NewOps(ping func(context.Context) error, g prometheus.Gatherer) fasthttp.RequestHandler {
	r := router.New()
	r.GET("/healthz", handlers.Healthz(ping))
	if g != nil {
		r.GET("/metrics", handlers.MetricsHandler(g))
	}
	return r.Handler
}

func named(name string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		httpctx.SetRoute(ctx, name)
		next(ctx)
	}
}

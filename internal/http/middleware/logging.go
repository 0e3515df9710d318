package middleware

import (
	"time"

	"github.com/valyala/fasthttp"

	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/logger"
	"exchangeapi/internal/metrics"
)

// RequestLogger logs one line per request and records the request metrics.
func RequestLogger(logg *logger.Logger, m *metrics.Metrics) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			elapsed := time.Since(start)

			status := ctx.Response.StatusCode()
			method := string(ctx.Method())
			route := httpctx.RouteFromCtx(ctx)
			m.ObserveRequest(route, method, status, elapsed)

			c := logg.WithFields(httpctx.Context(ctx), map[string]any{
				"method":      method,
				"path":        string(ctx.Path()),
				"route":       route,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
				"ip":          ctx.RemoteIP().String(),
			})
			logg.Info(c, "request.complete")
		}
	}
}

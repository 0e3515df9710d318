package handlers

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// Healthz reports 200 "ok" when ping succeeds within two seconds.
func Healthz(ping func(context.Context) error) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if ping != nil {
			if err := ping(c); err != nil {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				ctx.SetBodyString("unavailable")
				return
			}
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	}
}

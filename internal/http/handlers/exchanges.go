package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/exchange"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/http/responses"
	"exchangeapi/internal/logger"
	"exchangeapi/internal/metrics"
)

const msgCreated = "Exchange created successfully"

// ExchangeService is the domain surface behind the exchange endpoints.
type ExchangeService interface {
	Create(ctx context.Context, merchantID uuid.UUID, req *exchange.CreateRequest) (*exchange.Created, error)
	Status(ctx context.Context, merchantID uuid.UUID, code string) (*exchange.StatusView, error)
	List(ctx context.Context, merchantID uuid.UUID, q exchange.ListQuery) (*exchange.ListResult, error)
}

type Exchanges struct {
	svc     ExchangeService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewExchanges(svc ExchangeService, logg *logger.Logger, m *metrics.Metrics) *Exchanges {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Exchanges{svc: svc, log: logg, metrics: m}
}

// Create handles POST /create.
func (h *Exchanges) Create(ctx *fasthttp.RequestCtx) {
	merchant, ok := MustMerchant(ctx)
	if !ok {
		return
	}

	req, err := exchange.DecodeCreateRequest(ctx.PostBody())
	if err != nil {
		responses.WriteError(ctx, h.log, apperrors.Wrap(apperrors.CodeValidation, err, "Invalid JSON body"))
		return
	}

	out, err := h.svc.Create(httpctx.Context(ctx), merchant.ID, req)
	if err != nil {
		responses.WriteError(ctx, h.log, err)
		return
	}

	h.metrics.ExchangeCreated(merchant.ID.String())
	h.log.Info(h.log.WithField(httpctx.Context(ctx), "exchange_code", out.ExchangeCode), "exchange.created")
	responses.WriteSuccess(ctx, out, msgCreated)
}

// Status handles GET /status/{code}.
func (h *Exchanges) Status(ctx *fasthttp.RequestCtx) {
	merchant, ok := MustMerchant(ctx)
	if !ok {
		return
	}

	code, _ := ctx.UserValue("code").(string)
	code = strings.TrimSpace(code)
	if code == "" {
		responses.Error(ctx, apperrors.CodeValidation, "Exchange code is required")
		return
	}

	view, err := h.svc.Status(httpctx.Context(ctx), merchant.ID, code)
	if err != nil {
		responses.WriteError(ctx, h.log, err)
		return
	}
	responses.WriteSuccess(ctx, view, "")
}

// List handles GET /list.
func (h *Exchanges) List(ctx *fasthttp.RequestCtx) {
	merchant, ok := MustMerchant(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	q, err := exchange.ParseListQuery(
		string(args.Peek("page")),
		string(args.Peek("limit")),
		string(args.Peek("status")),
		string(args.Peek("from_date")),
		string(args.Peek("to_date")),
	)
	if err != nil {
		responses.WriteError(ctx, h.log, err)
		return
	}

	res, err := h.svc.List(httpctx.Context(ctx), merchant.ID, q)
	if err != nil {
		responses.WriteError(ctx, h.log, err)
		return
	}
	responses.WriteSuccess(ctx, res, "")
}

// NotFound answers every request outside the dispatch table.
func NotFound(ctx *fasthttp.RequestCtx) {
	responses.Error(ctx, apperrors.CodeNotFound, "Endpoint not found")
}

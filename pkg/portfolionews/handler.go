package portfolionews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

const (
	defaultActionGroup = "PortfolioNewsActionGroup"
	defaultFunction    = "getPortfolioNews"
)

type Handler struct {
	svc  *Service
	env  *agent.Envelope
	spec agent.Spec
	log  *slog.Logger
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc: svc,
		env: agent.NewEnvelope(defaultActionGroup, defaultFunction),
		spec: agent.Spec{Fields: []agent.Field{
			{Name: "tickers", Kind: agent.TickerList},
			{Name: "timeframe", Kind: agent.Enum, Default: "24h"},
			{Name: "client_name", Kind: agent.String},
		}},
		log: logging.New("PortfolioNewsHandler"),
	}
}

func (h *Handler) Handle(ctx context.Context, ev agent.Event) (resp agent.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("handler panicked", "panic", fmt.Sprintf("%v", r))
			resp = h.env.Failure(ev, agent.Internal(fmt.Errorf("%v", r)))
			err = nil
		}
	}()

	args, exErr := h.spec.Extract(ev)
	if exErr != nil {
		h.log.Warn("parameter extraction failed", logging.Err(exErr))
		return h.env.Failure(ev, exErr), nil
	}

	tickers := args.StringList("tickers")
	timeframe := strings.ToLower(args.String("timeframe"))
	clientName := args.String("client_name")
	h.log.Info("processing request", "tickers", len(tickers),
		"timeframe", timeframe, "client_name", clientName, "requestId", ev.RequestID)

	result, svcErr := h.svc.Get(ctx, tickers, timeframe, clientName)
	if svcErr != nil {
		h.log.Error("request failed", logging.Err(svcErr))
		return h.env.Failure(ev, agent.Classify(svcErr)), nil
	}
	return h.env.Success(ev, result), nil
}

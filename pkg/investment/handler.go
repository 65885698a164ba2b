package investment

import (
	"context"
	"fmt"
	"log/slog"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

const (
	defaultActionGroup = "InvestmentMetricsActionGroup"
	defaultFunction    = "analyzeInvestment"
)

type Handler struct {
	analyzer *Analyzer
	env      *agent.Envelope
	spec     agent.Spec
	log      *slog.Logger
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
		env:      agent.NewEnvelope(defaultActionGroup, defaultFunction),
		spec: agent.Spec{Fields: []agent.Field{
			{Name: "ticker", Kind: agent.Ticker, Required: true},
			{Name: "analysis_type", Kind: agent.Enum, Default: "standard"},
		}},
		log: logging.New("InvestmentMetricsHandler"),
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

	ticker := args.String("ticker")
	h.log.Info("processing request", "ticker", ticker, "requestId", ev.RequestID)

	result, svcErr := h.analyzer.Analyze(ctx, ticker, args.String("analysis_type"))
	if svcErr != nil {
		h.log.Error("analysis failed", "ticker", ticker, logging.Err(svcErr))
		return h.env.Failure(ev, agent.Classify(svcErr)), nil
	}
	return h.env.Success(ev, result), nil
}

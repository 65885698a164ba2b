package financialdata

import (
	"context"
	"fmt"
	"log/slog"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

const (
	defaultActionGroup = "FinancialDataActionGroup"
	defaultFunction    = "getFinancialData"
)

// Handler adapts the service to the agent invocation protocol.
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
			{Name: "ticker", Kind: agent.Ticker, Required: true},
			{Name: "data_type", Kind: agent.Enum, Default: "overview"},
			{Name: "additional_params", Kind: agent.JSON},
		}},
		log: logging.New("FinancialDataHandler"),
	}
}

// Handle never returns a transport error: every failure is encoded in the
// envelope for the agent to inspect.
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
	dataType := args.String("data_type")
	h.log.Info("processing request", "ticker", ticker, "data_type", dataType, "requestId", ev.RequestID)

	data, svcErr := h.svc.Get(ctx, ticker, dataType, args.Map("additional_params"))
	if svcErr != nil {
		h.log.Error("request failed", "ticker", ticker, logging.Err(svcErr))
		return h.env.Failure(ev, agent.Classify(svcErr)), nil
	}

	return h.env.Success(ev, map[string]any{
		"ticker":    ticker,
		"data_type": dataType,
		"data":      data,
	}), nil
}

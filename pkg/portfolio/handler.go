package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

const (
	defaultActionGroup = "PortfolioAnalysisActionGroup"
	defaultFunction    = "analyzePortfolio"
)

// clientRequired lists the analysis types that cannot run without a client.
var clientRequired = map[string]bool{
	"overview": true, "performance": true, "holdings": true,
	"transactions": true, "risk": true, "sector_breakdown": true,
}

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
			{Name: "analysis_type", Kind: agent.Enum, Default: "overview"},
			{Name: "client_name", Kind: agent.String},
			{Name: "employee_name", Kind: agent.String},
			{Name: "period", Kind: agent.String},
			{Name: "client1", Kind: agent.String},
			{Name: "client2", Kind: agent.String},
			{Name: "threshold", Kind: agent.Float},
			{Name: "additional_params", Kind: agent.JSON},
		}},
		log: logging.New("PortfolioAnalysisHandler"),
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

	analysisType := args.String("analysis_type")
	clientName := args.String("client_name")
	h.log.Info("processing request", "analysis_type", analysisType,
		"client_name", clientName, "requestId", ev.RequestID)

	if clientRequired[analysisType] && clientName == "" {
		missing := &agent.Error{
			Kind:    agent.KindMissingParameter,
			Message: fmt.Sprintf("Missing required parameter 'client_name' for analysis type '%s'", analysisType),
		}
		h.log.Warn("missing client name", "analysis_type", analysisType)
		return h.env.Failure(ev, missing), nil
	}

	result, svcErr := h.svc.Analyze(Request{
		AnalysisType: analysisType,
		ClientName:   clientName,
		EmployeeName: args.String("employee_name"),
		Extra:        extraParams(args),
	})
	if svcErr != nil {
		h.log.Error("analysis failed", "analysis_type", analysisType, logging.Err(svcErr))
		return h.env.Failure(ev, agent.Classify(svcErr)), nil
	}
	return h.env.Success(ev, result), nil
}

// extraParams folds the named analysis options over additional_params, so a
// top-level period/client1/client2/threshold wins over the JSON blob.
func extraParams(args agent.Args) map[string]any {
	extra := map[string]any{}
	for k, v := range args.Map("additional_params") {
		extra[k] = v
	}
	for _, name := range []string{"period", "client1", "client2"} {
		if v := args.String(name); v != "" {
			extra[name] = v
		}
	}
	if v, ok := args.Float("threshold"); ok {
		extra["threshold"] = v
	}
	return extra
}

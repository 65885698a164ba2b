// Package adapter exposes the investment tools as conversational functions:
// instead of a JSON payload it renders a plain-text reply the agent can relay
// to the user verbatim.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/analysis"
	"portfoliobot/pkg/investment"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/yahoo"
)

const (
	actionGroup = "InvestmentTools"

	disclaimer = "Disclaimer: This analysis is for informational purposes only and should not be considered as financial advice."
)

type Adapter struct {
	analyzer *investment.Analyzer
	quotes   investment.QuoteProvider
	env      *agent.Envelope
	spec     agent.Spec
	log      *slog.Logger
}

func New(analyzer *investment.Analyzer, quotes investment.QuoteProvider) *Adapter {
	return &Adapter{
		analyzer: analyzer,
		quotes:   quotes,
		env:      agent.NewEnvelope(actionGroup, "analyze_investment"),
		spec: agent.Spec{Fields: []agent.Field{
			{Name: "ticker", Kind: agent.Ticker, Required: true},
			{Name: "depth", Kind: agent.Enum, Default: "standard"},
		}},
		log: logging.New("AgentAdapter"),
	}
}

// Handle routes by the event's function name. Failures are rendered as plain
// text as well, since the agent relays whatever body it receives.
func (a *Adapter) Handle(ctx context.Context, ev agent.Event) (resp agent.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("adapter panicked", "panic", fmt.Sprintf("%v", r))
			resp = a.env.Text(ev, "Error: Internal server error")
			err = nil
		}
	}()

	a.log.Info("processing agent request", "function", ev.Function, "requestId", ev.RequestID)

	switch ev.Function {
	case "analyze_investment":
		return a.analyzeInvestment(ctx, ev), nil
	case "get_financial_data":
		return a.getFinancialData(ctx, ev), nil
	default:
		a.log.Warn("unknown function", "function", ev.Function)
		return a.env.Text(ev, "Error: Unknown function: "+ev.Function), nil
	}
}

func (a *Adapter) analyzeInvestment(ctx context.Context, ev agent.Event) agent.Response {
	args, err := a.spec.Extract(ev)
	if err != nil {
		return a.env.Text(ev, "Error: "+err.Error())
	}
	ticker := args.String("ticker")

	analysisType := "standard"
	if args.String("depth") == "enhanced" {
		analysisType = "enhanced"
	}

	result, err := a.analyzer.Analyze(ctx, ticker, analysisType)
	if err != nil {
		a.log.Error("analysis failed", "ticker", ticker, logging.Err(err))
		return a.env.Text(ev, "Error: "+agent.Classify(err).Error())
	}
	return a.env.Text(ev, formatInvestment(ticker, result))
}

func (a *Adapter) getFinancialData(ctx context.Context, ev agent.Event) agent.Response {
	args, err := a.spec.Extract(ev)
	if err != nil {
		return a.env.Text(ev, "Error: "+err.Error())
	}
	ticker := args.String("ticker")

	info, err := a.quotes.StockInfo(ctx, ticker)
	if err != nil {
		a.log.Error("data fetch failed", "ticker", ticker, logging.Err(err))
		return a.env.Text(ev, "Error: "+agent.Classify(err).Error())
	}
	return a.env.Text(ev, formatFinancialData(info))
}

func formatInvestment(ticker string, result map[string]any) string {
	var b strings.Builder

	name := ticker
	var price *float64
	if an, ok := result["analysis"].(map[string]any); ok {
		if core, ok := an["core_metrics"].(map[string]any); ok {
			if n, ok := core["name"].(string); ok && n != "" {
				name = n
			}
			price, _ = core["currentPrice"].(*float64)
		}
		fmt.Fprintf(&b, "Investment Analysis: %s (%s)\n\n", name, ticker)
		if price != nil {
			fmt.Fprintf(&b, "Current Price: $%.2f\n", *price)
		}
		if rec, ok := an["recommendation"].(analysis.Recommendation); ok {
			fmt.Fprintf(&b, "Recommendation: %s\n", rec.Label)
			fmt.Fprintf(&b, "Investment Score: %.1f/100\n", rec.Score)
			fmt.Fprintf(&b, "Confidence: %s\n\n", rec.Confidence)
			b.WriteString("Key Insights:\n")
			insights := rec.Rationale
			if len(insights) > 3 {
				insights = insights[:3]
			}
			for _, r := range insights {
				fmt.Fprintf(&b, "- %s\n", r)
			}
		}
	}

	b.WriteString("\n" + disclaimer)
	return b.String()
}

func formatFinancialData(info yahoo.StockInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Financial Data: %s (%s)\n\n", info.Name, info.Symbol)
	if info.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s\n", info.Sector)
	}
	if info.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", info.Industry)
	}
	writeMetric(&b, "Current Price", info.CurrentPrice, "$%.2f")
	writeMetric(&b, "Market Cap", info.MarketCap, "$%.0f")
	writeMetric(&b, "Forward P/E", info.ForwardPE, "%.2f")
	writeMetric(&b, "Return on Equity", info.ReturnOnEquity, "%.2f")
	writeMetric(&b, "Debt to Equity", info.DebtToEquity, "%.2f")
	writeMetric(&b, "Profit Margins", info.ProfitMargins, "%.2f")
	b.WriteString("\n" + disclaimer)
	return b.String()
}

func writeMetric(b *strings.Builder, label string, v *float64, format string) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s: "+format+"\n", label, *v)
}

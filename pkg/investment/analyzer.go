// Package investment implements the analyzeInvestment capability: a hybrid
// pass over core metrics plus contextual risk and growth assessments, ending
// in a scored recommendation.
package investment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/analysis"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/yahoo"
)

// QuoteProvider is the slice of the quote client the analyzer needs.
type QuoteProvider interface {
	StockInfo(ctx context.Context, ticker string) (yahoo.StockInfo, error)
}

var supportedAnalysisTypes = []string{"standard", "enhanced"}

type Analyzer struct {
	quotes QuoteProvider
	log    *slog.Logger
	now    func() time.Time
}

func NewAnalyzer(quotes QuoteProvider) *Analyzer {
	return &Analyzer{
		quotes: quotes,
		log:    logging.New("InvestmentAnalyzer"),
		now:    time.Now,
	}
}

// Analyze runs the hybrid analysis. The enhanced pass folds earnings growth
// into the scored bands; the standard pass keeps it contextual only.
func (a *Analyzer) Analyze(ctx context.Context, ticker, analysisType string) (map[string]any, error) {
	if !supportedAnalysis(analysisType) {
		return nil, agent.UnsupportedEnum("analysis type", analysisType, supportedAnalysisTypes)
	}

	a.log.Info("starting investment analysis", "ticker", ticker, "analysis_type", analysisType)

	info, err := a.quotes.StockInfo(ctx, ticker)
	if err != nil {
		return nil, agent.Upstream("Unable to retrieve basic stock data for "+ticker, err)
	}

	core := map[string]any{
		"name":           info.Name,
		"currentPrice":   info.CurrentPrice,
		"forwardPE":      info.ForwardPE,
		"returnOnEquity": info.ReturnOnEquity,
		"debtToEquity":   info.DebtToEquity,
		"profitMargins":  info.ProfitMargins,
		"retrieved_at":   info.RetrievedAt,
	}
	contextData := map[string]any{
		"sector":          info.Sector,
		"industry":        info.Industry,
		"beta":            info.Beta,
		"earningsGrowth":  info.EarningsGrowth,
		"revenueGrowth":   info.RevenueGrowth,
		"marketCap":       info.MarketCap,
		"dividendYield":   info.DividendYield,
		"risk_assessment": assessRisk(info),
		"growth_profile":  assessGrowth(info),
	}

	metrics := analysis.Metrics{
		ForwardPE:      info.ForwardPE,
		ReturnOnEquity: info.ReturnOnEquity,
		DebtToEquity:   info.DebtToEquity,
		ProfitMargins:  info.ProfitMargins,
		EarningsGrowth: info.EarningsGrowth,
	}
	var rec analysis.Recommendation
	if analysisType == "enhanced" {
		rec = analysis.RecommendEnhanced(metrics)
	} else {
		rec = analysis.Recommend(metrics)
	}
	rec.Rationale = append(rec.Rationale,
		"Risk profile: "+assessRisk(info),
		"Growth outlook: "+assessGrowth(info),
	)

	a.log.Info("investment analysis completed", "ticker", ticker,
		"recommendation", rec.Label, "score", rec.Score)

	return map[string]any{
		"ticker":        info.Symbol,
		"analysis_type": analysisType,
		"analysis": map[string]any{
			"core_metrics":     core,
			"context_analysis": contextData,
			"recommendation":   rec,
		},
		"timestamp": info.RetrievedAt,
	}, nil
}

// assessRisk describes volatility and leverage from whatever is reported.
func assessRisk(info yahoo.StockInfo) string {
	if info.Beta == nil && info.DebtToEquity == nil {
		return "Unable to assess risk - insufficient data"
	}

	var factors []string
	if info.Beta != nil {
		switch b := *info.Beta; {
		case b > 1.5:
			factors = append(factors, "High volatility")
		case b > 1.0:
			factors = append(factors, "Moderate volatility")
		default:
			factors = append(factors, "Low volatility")
		}
	}
	if info.DebtToEquity != nil {
		switch d := *info.DebtToEquity; {
		case d > 100:
			factors = append(factors, "High debt levels")
		case d > 50:
			factors = append(factors, "Moderate debt levels")
		default:
			factors = append(factors, "Conservative debt levels")
		}
	}
	if len(factors) == 0 {
		return "Moderate risk"
	}
	return strings.Join(factors, ", ")
}

func assessGrowth(info yahoo.StockInfo) string {
	if info.EarningsGrowth == nil && info.RevenueGrowth == nil {
		return "Growth data unavailable"
	}

	var indicators []string
	if info.EarningsGrowth != nil {
		switch g := *info.EarningsGrowth; {
		case g > 0.15:
			indicators = append(indicators, "Strong earnings growth")
		case g > 0.05:
			indicators = append(indicators, "Moderate earnings growth")
		default:
			indicators = append(indicators, "Limited earnings growth")
		}
	}
	if info.RevenueGrowth != nil {
		switch g := *info.RevenueGrowth; {
		case g > 0.10:
			indicators = append(indicators, "Strong revenue growth")
		case g > 0.03:
			indicators = append(indicators, "Moderate revenue growth")
		default:
			indicators = append(indicators, "Limited revenue growth")
		}
	}
	if len(indicators) == 0 {
		return "Stable growth profile"
	}
	return strings.Join(indicators, ", ")
}

func supportedAnalysis(t string) bool {
	for _, s := range supportedAnalysisTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Package portfolio serves the analyzePortfolio capability for investment
// consultants: overviews, performance reports, holdings, transactions, risk,
// comparisons, sector breakdowns, alerts, personal portfolios, and compliance
// audits over the demo client book.
package portfolio

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

var supportedAnalysisTypes = []string{
	"overview", "performance", "holdings", "transactions",
	"risk", "comparison", "sector_breakdown", "alerts",
	"personal_portfolio", "compliance",
}

// softBudget is the response-time target; analyses past it are logged, not
// aborted.
const softBudget = 3 * time.Second

type Service struct {
	log *slog.Logger
	now func() time.Time
}

func NewService() *Service {
	return &Service{
		log: logging.New("PortfolioAnalysisService"),
		now: time.Now,
	}
}

// Request carries the routed arguments of one analysis.
type Request struct {
	AnalysisType string
	ClientName   string
	EmployeeName string
	Extra        map[string]any
}

// Analyze routes the request and stamps the result with timing metadata.
func (s *Service) Analyze(req Request) (map[string]any, error) {
	start := s.now()
	s.log.Info("starting portfolio analysis",
		"analysis_type", req.AnalysisType, "client_name", req.ClientName)

	var (
		result map[string]any
		err    error
	)
	switch req.AnalysisType {
	case "overview":
		result, err = s.overview(req.ClientName)
	case "performance":
		result, err = s.performance(req.ClientName, req.Extra)
	case "holdings":
		result, err = s.holdings(req.ClientName)
	case "transactions":
		result, err = s.transactions(req.ClientName, req.Extra)
	case "risk":
		result, err = s.risk(req.ClientName)
	case "comparison":
		result, err = s.comparison(req.Extra)
	case "sector_breakdown":
		result, err = s.sectorBreakdown(req.ClientName)
	case "alerts":
		result, err = s.alerts(req.Extra)
	case "personal_portfolio":
		result, err = s.personalPortfolio(req.EmployeeName, req.Extra)
	case "compliance":
		result, err = s.compliance(req.Extra)
	default:
		return nil, agent.UnsupportedEnum("analysis type", req.AnalysisType, supportedAnalysisTypes)
	}
	if err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(start)
	if elapsed > softBudget {
		s.log.Warn("analysis exceeded response time target", "elapsed", elapsed.String())
	}
	result["performance_metrics"] = map[string]any{
		"analysis_time_seconds": math.Round(elapsed.Seconds()*1000) / 1000,
		"timestamp":             s.now().UTC().Format(time.RFC3339),
		"analysis_type":         req.AnalysisType,
	}

	s.log.Info("portfolio analysis completed",
		"analysis_type", req.AnalysisType, "elapsed", elapsed.String())
	return result, nil
}

func (s *Service) overview(clientName string) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}

	totalValue, totalGain := totals(p.Holdings)
	returnPct := totalReturnPct(totalValue, totalGain)

	top := append([]Holding(nil), p.Holdings...)
	sort.Slice(top, func(i, j int) bool {
		return top[i].MarketValue.GreaterThan(top[j].MarketValue)
	})
	if len(top) > 5 {
		top = top[:5]
	}
	topHoldings := make([]map[string]any, 0, len(top))
	for _, h := range top {
		topHoldings = append(topHoldings, map[string]any{
			"symbol":            h.Symbol,
			"name":              h.Name,
			"market_value":      h.MarketValue,
			"weight_percentage": weightPct(h.MarketValue, totalValue),
			"gain_loss":         h.UnrealizedGainLoss,
		})
	}

	return map[string]any{
		"client_name":   clientName,
		"analysis_type": "portfolio_overview",
		"summary": map[string]any{
			"total_portfolio_value":   totalValue,
			"total_gain_loss":         totalGain,
			"total_return_percentage": returnPct,
			"number_of_holdings":      len(p.Holdings),
			"last_updated":            p.LastUpdated,
		},
		"top_holdings":      topHoldings,
		"sector_allocation": sectorAllocation(p.Holdings),
		"risk_metrics": map[string]any{
			"portfolio_beta": p.Beta,
			"sharpe_ratio":   p.SharpeRatio,
			"volatility":     p.Volatility,
		},
		"insights": portfolioInsights(p, returnPct),
	}, nil
}

func (s *Service) performance(clientName string, extra map[string]any) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}
	period := stringParam(extra, "period", "monthly")

	// Static period figures; a real implementation would price the book
	// against historical bars.
	alpha := 1.3
	best := map[string]any{"symbol": "AAPL", "return": 15.2}

	return map[string]any{
		"client_name":   clientName,
		"analysis_type": "performance_report",
		"report_period": period,
		"performance_summary": map[string]any{
			"period_return":            12500,
			"period_return_percentage": 8.5,
			"benchmark_return":         7.2,
			"alpha":                    alpha,
			"beta":                     p.Beta,
			"sharpe_ratio":             p.SharpeRatio,
			"max_drawdown":             p.MaxDrawdown,
		},
		"best_performer": best,
		"key_insights": []string{
			"Portfolio outperformed benchmark by 1.30%",
			"Best performing asset: AAPL (+15.20%)",
			"Portfolio volatility: " + pct(p.Volatility),
			"Risk-adjusted return (Sharpe): " + num(p.SharpeRatio),
		},
		"recommendations": []string{
			"Continue current strategy - performance is strong",
			"Consider taking profits on best performers",
			"Monitor market conditions for rebalancing opportunities",
		},
	}, nil
}

func (s *Service) holdings(clientName string) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}

	totalValue, totalGain := totals(p.Holdings)
	rows := make([]map[string]any, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		rows = append(rows, map[string]any{
			"symbol":               h.Symbol,
			"name":                 h.Name,
			"shares":               h.Shares,
			"market_value":         h.MarketValue,
			"unrealized_gain_loss": h.UnrealizedGainLoss,
			"weight_percentage":    weightPct(h.MarketValue, totalValue),
			"sector":               h.Sector,
		})
	}

	return map[string]any{
		"client_name":        clientName,
		"analysis_type":      "holdings",
		"holdings":           rows,
		"number_of_holdings": len(rows),
		"total_market_value": totalValue,
		"total_gain_loss":    totalGain,
		"last_updated":       p.LastUpdated,
	}, nil
}

func (s *Service) transactions(clientName string, extra map[string]any) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}
	txType := stringParam(extra, "transaction_type", "")

	rows := make([]Transaction, 0, len(p.Transactions))
	for _, t := range p.Transactions {
		if txType != "" && t.Type != txType {
			continue
		}
		rows = append(rows, t)
	}

	return map[string]any{
		"client_name":       clientName,
		"analysis_type":     "transactions",
		"transactions":      rows,
		"transaction_count": len(rows),
		"filter_applied":    txType != "",
		"last_updated":      p.LastUpdated,
	}, nil
}

func (s *Service) risk(clientName string) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}

	return map[string]any{
		"client_name":   clientName,
		"analysis_type": "risk_analysis",
		"risk_metrics": map[string]any{
			"portfolio_beta": p.Beta,
			"sharpe_ratio":   p.SharpeRatio,
			"volatility":     p.Volatility,
			"max_drawdown":   p.MaxDrawdown,
			"var_95":         -0.05,
			"sortino_ratio":  1.2,
		},
		"risk_breakdown_by_asset": assetRiskContribution(p.Holdings),
		"risk_assessment":         riskLevel(p.Beta),
		"risk_alerts":             riskAlerts(p),
		"recommendations": []string{
			"Consider rebalancing if any single position exceeds 10% of portfolio",
			"Monitor high-beta positions during market volatility",
			"Review correlation between major holdings",
		},
	}, nil
}

func (s *Service) comparison(extra map[string]any) (map[string]any, error) {
	client1 := stringParam(extra, "client1", "")
	client2 := stringParam(extra, "client2", "")

	p1, ok1 := clientPortfolio(client1)
	p2, ok2 := clientPortfolio(client2)
	if !ok1 || !ok2 {
		return nil, agent.ValidationFailed("One or both client portfolios not found")
	}

	winner := client1
	if p2.TotalReturn > p1.TotalReturn {
		winner = client2
	}

	return map[string]any{
		"analysis_type":    "comparative_analysis",
		"clients_compared": []string{client1, client2},
		"performance_comparison": map[string]any{
			client1: comparisonRow(p1),
			client2: comparisonRow(p2),
		},
		"winner_analysis": map[string]any{
			"winner": winner,
			"margin": math.Abs(p1.TotalReturn - p2.TotalReturn),
			"reason": "Higher total return: " + pct(math.Max(p1.TotalReturn, p2.TotalReturn)),
		},
		"key_differences": portfolioDifferences(p1, p2),
	}, nil
}

func (s *Service) sectorBreakdown(clientName string) (map[string]any, error) {
	p, ok := clientPortfolio(clientName)
	if !ok {
		return nil, agent.ValidationFailed("No portfolio found for client: " + clientName)
	}

	return map[string]any{
		"client_name":       clientName,
		"analysis_type":     "sector_breakdown",
		"sector_allocation": sectorAllocation(p.Holdings),
		"sector_performance": map[string]float64{
			"Technology": 12.5,
			"Healthcare": 8.3,
			"Financial":  6.7,
		},
		"sector_insights": []string{
			"Technology sector represents largest allocation",
			"Healthcare showing strongest year-to-date performance",
			"Consider reducing concentration in any sector >25%",
		},
		"rebalancing_suggestions": []string{
			"Consider reducing Technology allocation from 65% to 50%",
			"Increase Healthcare exposure to 20%",
			"Add defensive sectors like Utilities",
		},
	}, nil
}

func (s *Service) alerts(extra map[string]any) (map[string]any, error) {
	threshold := floatParam(extra, "threshold", 0.05)

	portfolioAlerts := []map[string]any{}
	rebalancing := []map[string]any{}
	riskList := []map[string]any{}

	for _, clientName := range sortedClients() {
		p := mockPortfolios[clientName]
		if math.Abs(p.RecentChangePct) > threshold {
			portfolioAlerts = append(portfolioAlerts, map[string]any{
				"client":            clientName,
				"alert_type":        "significant_change",
				"change_percentage": p.RecentChangePct,
				"message":           "Portfolio changed by " + pct(p.RecentChangePct) + " recently",
			})
		}
		if needsRebalancing(p) {
			rebalancing = append(rebalancing, map[string]any{
				"client":   clientName,
				"reason":   "Asset allocation drift detected",
				"priority": "medium",
			})
		}
		if p.Beta > 1.5 {
			riskList = append(riskList, map[string]any{
				"client":     clientName,
				"alert_type": "high_beta",
				"beta_value": p.Beta,
				"message":    "Portfolio beta exceeds risk tolerance",
			})
		}
	}

	return map[string]any{
		"analysis_type":      "alerts_notifications",
		"alert_threshold":    threshold,
		"portfolio_alerts":   portfolioAlerts,
		"rebalancing_needed": rebalancing,
		"risk_alerts":        riskList,
		"performance_alerts": []map[string]any{},
		"generated_at":       s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) personalPortfolio(employeeName string, extra map[string]any) (map[string]any, error) {
	period := stringParam(extra, "period", "6_months")

	return map[string]any{
		"employee_name": employeeName,
		"analysis_type": "personal_portfolio",
		"portfolio_summary": map[string]any{
			"total_value":     150000,
			"total_return":    0.08,
			"period_analyzed": period,
			"last_updated":    s.now().UTC().Format(time.RFC3339),
		},
		"top_holdings": []map[string]any{
			{"symbol": "AAPL", "value": 25000, "weight": 16.7},
			{"symbol": "MSFT", "value": 20000, "weight": 13.3},
			{"symbol": "GOOGL", "value": 18000, "weight": 12.0},
		},
		"performance_summary": map[string]any{
			"period_return": 0.08,
			"sharpe_ratio":  1.1,
			"volatility":    0.14,
			"max_drawdown":  -0.06,
		},
		"insights": []string{
			"Portfolio has generated 8% return over " + period,
			"Sharpe ratio of 1.1 indicates good risk-adjusted returns",
			"Technology allocation may be overweight",
		},
	}, nil
}

func (s *Service) compliance(extra map[string]any) (map[string]any, error) {
	period := stringParam(extra, "period", "monthly")

	return map[string]any{
		"analysis_type": "compliance_audit",
		"audit_period":  period,
		"unusual_transactions": []map[string]any{
			{
				"client":           "John Smith",
				"transaction_type": "large_sale",
				"amount":           500000,
				"symbol":           "AAPL",
				"date":             "2025-01-10",
				"flag_reason":      "Exceeds normal transaction size",
			},
		},
		"compliance_alerts": []map[string]any{
			{
				"client":      "Sarah Johnson",
				"alert_type":  "concentration_risk",
				"description": "Single position exceeds 15% of portfolio",
			},
		},
		"regulatory_checks": map[string]string{
			"position_limits":       "All within limits",
			"insider_trading_flags": "None detected",
			"wash_sale_violations":  "None detected",
		},
		"recommendations": []string{
			"Review large transactions with clients",
			"Monitor concentration risks monthly",
			"Update compliance procedures for new regulations",
		},
	}, nil
}

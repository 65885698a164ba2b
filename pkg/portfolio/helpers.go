package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

func totals(holdings []Holding) (value, gain decimal.Decimal) {
	for _, h := range holdings {
		value = value.Add(h.MarketValue)
		gain = gain.Add(h.UnrealizedGainLoss)
	}
	return value, gain
}

// totalReturnPct derives the return against cost basis. A book whose gains
// exceed its value has corrupt demo data; report zero rather than a negative
// basis.
func totalReturnPct(value, gain decimal.Decimal) float64 {
	basis := value.Sub(gain)
	if basis.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := gain.Div(basis).Mul(d(100)).Round(2).Float64()
	return pct
}

func weightPct(marketValue, totalValue decimal.Decimal) float64 {
	if totalValue.IsZero() {
		return 0
	}
	pct, _ := marketValue.Div(totalValue).Mul(d(100)).Round(2).Float64()
	return pct
}

func sectorAllocation(holdings []Holding) map[string]float64 {
	totalValue, _ := totals(holdings)
	sectorValues := map[string]decimal.Decimal{}
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = "Other"
		}
		sectorValues[sector] = sectorValues[sector].Add(h.MarketValue)
	}

	allocation := make(map[string]float64, len(sectorValues))
	for sector, value := range sectorValues {
		allocation[sector] = weightPct(value, totalValue)
	}
	return allocation
}

func portfolioInsights(p Portfolio, returnPct float64) []string {
	var insights []string
	if returnPct > 10 {
		insights = append(insights, "Portfolio is performing well above market average")
	} else if returnPct < 0 {
		insights = append(insights, "Portfolio is experiencing losses - consider reviewing allocation")
	}
	if p.Beta > 1.2 {
		insights = append(insights, "Portfolio has high market sensitivity - consider defensive positions")
	}
	insights = append(insights, "Regular rebalancing recommended to maintain target allocation")
	return insights
}

// assetRiskContribution approximates each position's share of portfolio risk
// by its weight; per-asset betas are not tracked in the demo book.
func assetRiskContribution(holdings []Holding) []map[string]any {
	totalValue, _ := totals(holdings)
	out := make([]map[string]any, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, map[string]any{
			"symbol":            h.Symbol,
			"risk_contribution": weightPct(h.MarketValue, totalValue) / 100,
		})
	}
	return out
}

func riskLevel(beta float64) string {
	switch {
	case beta > 1.3:
		return "High Risk"
	case beta > 1.1:
		return "Moderate Risk"
	default:
		return "Conservative"
	}
}

func riskAlerts(p Portfolio) []string {
	alerts := []string{}
	if p.MaxDrawdown < -0.15 {
		alerts = append(alerts, "High maximum drawdown detected")
	}
	if p.Volatility > 0.25 {
		alerts = append(alerts, "High volatility levels")
	}
	return alerts
}

func needsRebalancing(p Portfolio) bool {
	return p.TotalValue.GreaterThan(d(200000))
}

func comparisonRow(p Portfolio) map[string]any {
	return map[string]any{
		"total_return": p.TotalReturn,
		"sharpe_ratio": p.SharpeRatio,
		"volatility":   p.Volatility,
		"max_drawdown": p.MaxDrawdown,
	}
}

func portfolioDifferences(p1, p2 Portfolio) []string {
	var diffs []string
	if p1.Volatility > p2.Volatility {
		diffs = append(diffs, "Second portfolio shows lower volatility")
	} else if p2.Volatility > p1.Volatility {
		diffs = append(diffs, "First portfolio shows lower volatility")
	}
	if riskLevel(p1.Beta) != riskLevel(p2.Beta) {
		diffs = append(diffs, fmt.Sprintf("Different risk profiles: %s vs %s",
			riskLevel(p1.Beta), riskLevel(p2.Beta)))
	}
	diffs = append(diffs, "Sector concentrations differ between the books")
	return diffs
}

func sortedClients() []string {
	names := make([]string, 0, len(mockPortfolios))
	for name := range mockPortfolios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringParam(extra map[string]any, key, def string) string {
	if v, ok := extra[key].(string); ok && v != "" {
		return v
	}
	return def
}

func floatParam(extra map[string]any, key string, def float64) float64 {
	if v, ok := extra[key].(float64); ok {
		return v
	}
	return def
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

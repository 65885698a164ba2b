// Package financialdata serves the getFinancialData capability: typed views
// over the quote provider (overview, earnings, historical, profile, metrics).
package financialdata

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/market"
	"portfoliobot/pkg/yahoo"
)

// QuoteProvider is the slice of the quote client this service depends on.
type QuoteProvider interface {
	StockInfo(ctx context.Context, ticker string) (yahoo.StockInfo, error)
	ValidateTicker(ctx context.Context, ticker string) bool
	Earnings(ctx context.Context, ticker string) (yahoo.EarningsReport, error)
}

// BarProvider supplies daily bars for the historical data type.
type BarProvider interface {
	HistoricalBars(ctx context.Context, tickers []string, start, end time.Time) (map[string]market.StockData, error)
}

var supportedDataTypes = []string{"overview", "earnings", "historical", "profile", "metrics"}

type Service struct {
	quotes QuoteProvider
	bars   BarProvider
	log    *slog.Logger
	now    func() time.Time
}

func NewService(quotes QuoteProvider, bars BarProvider) *Service {
	return &Service{
		quotes: quotes,
		bars:   bars,
		log:    logging.New("FinancialDataService"),
		now:    time.Now,
	}
}

// Get routes a data type to its view. Unknown data types and tickers that do
// not resolve fail before any expensive fetch.
func (s *Service) Get(ctx context.Context, ticker, dataType string, extra map[string]any) (map[string]any, error) {
	s.log.Info("retrieving financial data", "ticker", ticker, "data_type", dataType)

	if !supported(dataType) {
		return nil, agent.UnsupportedEnum("data type", dataType, supportedDataTypes)
	}
	if !s.quotes.ValidateTicker(ctx, ticker) {
		return nil, agent.ValidationFailed("Invalid ticker symbol: " + ticker)
	}

	switch dataType {
	case "overview":
		return s.overview(ctx, ticker)
	case "earnings":
		return s.earnings(ctx, ticker), nil
	case "historical":
		return s.historical(ctx, ticker, extra)
	case "profile":
		return s.profile(ctx, ticker)
	default:
		return s.metrics(ctx, ticker)
	}
}

func (s *Service) overview(ctx context.Context, ticker string) (map[string]any, error) {
	info, err := s.quotes.StockInfo(ctx, ticker)
	if err != nil {
		return nil, agent.Upstream("Unable to fetch data for "+ticker, err)
	}
	return map[string]any{
		"basic_info": map[string]any{
			"symbol":     info.Symbol,
			"name":       info.Name,
			"sector":     info.Sector,
			"industry":   info.Industry,
			"market_cap": info.MarketCap,
		},
		"price_info": map[string]any{
			"current_price":  info.CurrentPrice,
			"beta":           info.Beta,
			"dividend_yield": info.DividendYield,
		},
		"financial_ratios": map[string]any{
			"forward_pe":       info.ForwardPE,
			"return_on_equity": info.ReturnOnEquity,
			"debt_to_equity":   info.DebtToEquity,
			"profit_margins":   info.ProfitMargins,
		},
		"growth_metrics": map[string]any{
			"earnings_growth": info.EarningsGrowth,
			"revenue_growth":  info.RevenueGrowth,
		},
		"retrieved_at": info.RetrievedAt,
	}, nil
}

// earnings degrades instead of failing: a ticker with no quarterly history is
// still a valid request.
func (s *Service) earnings(ctx context.Context, ticker string) map[string]any {
	report, err := s.quotes.Earnings(ctx, ticker)
	if err != nil {
		s.log.Warn("earnings data unavailable", "ticker", ticker, logging.Err(err))
		return map[string]any{
			"symbol":             ticker,
			"earnings_available": false,
			"error":              err.Error(),
			"retrieved_at":       s.now().UTC().Format(time.RFC3339),
		}
	}
	return map[string]any{
		"symbol":             report.Symbol,
		"earnings_available": len(report.Quarters) > 0,
		"quarters":           report.Quarters,
		"summary": map[string]any{
			"quarters_of_data": len(report.Quarters),
		},
		"retrieved_at": report.RetrievedAt,
	}
}

func (s *Service) historical(ctx context.Context, ticker string, extra map[string]any) (map[string]any, error) {
	period := "1y"
	if p, ok := extra["period"].(string); ok && p != "" {
		period = p
	}
	end := s.now()
	start := end.Add(-periodDuration(period))

	data, err := s.bars.HistoricalBars(ctx, []string{ticker}, start, end)
	if err != nil {
		return nil, agent.Upstream("Unable to fetch historical data for "+ticker, err)
	}

	series, ok := data[ticker]
	dates := make([]string, 0, len(series.Dates))
	for _, d := range series.Dates {
		dates = append(dates, d.UTC().Format("2006-01-02"))
	}
	return map[string]any{
		"symbol":       ticker,
		"period":       period,
		"bars_present": ok && len(series.Close) > 0,
		"dates":        dates,
		"close":        series.Close,
		"high":         series.High,
		"sma20":        series.SMA20,
		"retrieved_at": s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) profile(ctx context.Context, ticker string) (map[string]any, error) {
	info, err := s.quotes.StockInfo(ctx, ticker)
	if err != nil {
		return nil, agent.Upstream("Unable to fetch data for "+ticker, err)
	}
	return map[string]any{
		"company_info": map[string]any{
			"symbol":   info.Symbol,
			"name":     info.Name,
			"sector":   info.Sector,
			"industry": info.Industry,
		},
		"business_metrics": map[string]any{
			"market_cap":       info.MarketCap,
			"enterprise_value": info.EnterpriseValue,
			"ebitda":           info.EBITDA,
			"beta":             info.Beta,
		},
		"retrieved_at": info.RetrievedAt,
	}, nil
}

func (s *Service) metrics(ctx context.Context, ticker string) (map[string]any, error) {
	info, err := s.quotes.StockInfo(ctx, ticker)
	if err != nil {
		return nil, agent.Upstream("Unable to fetch data for "+ticker, err)
	}
	return map[string]any{
		"valuation_metrics": map[string]any{
			"forward_pe":    info.ForwardPE,
			"current_price": info.CurrentPrice,
			"market_cap":    info.MarketCap,
		},
		"profitability_metrics": map[string]any{
			"return_on_equity": info.ReturnOnEquity,
			"profit_margins":   info.ProfitMargins,
			"ebitda":           info.EBITDA,
		},
		"financial_health": map[string]any{
			"debt_to_equity": info.DebtToEquity,
			"beta":           info.Beta,
		},
		"growth_metrics": map[string]any{
			"earnings_growth": info.EarningsGrowth,
			"revenue_growth":  info.RevenueGrowth,
		},
		"retrieved_at": info.RetrievedAt,
	}, nil
}

func supported(dataType string) bool {
	for _, dt := range supportedDataTypes {
		if dt == dataType {
			return true
		}
	}
	return false
}

// periodDuration parses periods like "1y", "6m", "90d", "4w". Unparseable
// input falls back to one year.
func periodDuration(period string) time.Duration {
	p := strings.ToLower(strings.TrimSpace(period))
	if len(p) < 2 {
		return 365 * 24 * time.Hour
	}
	n, err := strconv.Atoi(p[:len(p)-1])
	if err != nil || n <= 0 {
		return 365 * 24 * time.Hour
	}
	switch p[len(p)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour
	case 'y':
		return time.Duration(n) * 365 * 24 * time.Hour
	default:
		return 365 * 24 * time.Hour
	}
}

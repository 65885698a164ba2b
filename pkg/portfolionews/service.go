// Package portfolionews serves the getPortfolioNews capability: recent
// headlines and price moves for a set of tickers or a named client portfolio.
package portfolionews

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/market"
)

// MarketProvider is the slice of the market client this service needs.
type MarketProvider interface {
	PortfolioNews(ctx context.Context, tickers []string, timeframe string) []market.Article
	PortfolioPrices(ctx context.Context, tickers []string) ([]market.PriceQuote, error)
}

// ClientPortfolio is a demo client record. There is no client database in
// this deployment; these stand in for one.
type ClientPortfolio struct {
	Name        string   `json:"name"`
	Tickers     []string `json:"-"`
	AccountType string   `json:"account_type"`
	LastUpdated string   `json:"last_updated"`
}

var supportedTimeframes = []string{"24h", "48h", "7d", "30d"}

var clientPortfolios = map[string]ClientPortfolio{
	"alice": {Name: "Alice Johnson", Tickers: []string{"AAPL", "MSFT", "GOOGL", "TSLA"},
		AccountType: "Growth Portfolio", LastUpdated: "2025-01-13"},
	"bob": {Name: "Bob Smith", Tickers: []string{"XOM", "CVX", "JPM", "BAC", "WMT"},
		AccountType: "Conservative Portfolio", LastUpdated: "2025-01-12"},
	"charlie": {Name: "Charlie Davis", Tickers: []string{"NVDA", "AMD", "INTC", "QCOM", "AVGO"},
		AccountType: "Tech Portfolio", LastUpdated: "2025-01-13"},
	"diana": {Name: "Diana Wilson", Tickers: []string{"SPY", "QQQ", "VTI", "VXUS", "BND"},
		AccountType: "Diversified ETF Portfolio", LastUpdated: "2025-01-11"},
	"default": {Name: "Demo Client", Tickers: []string{"AAPL", "TSLA", "GOOGL"},
		AccountType: "Demo Portfolio", LastUpdated: "2025-01-13"},
}

type Service struct {
	provider MarketProvider
	log      *slog.Logger
	now      func() time.Time
}

func NewService(provider MarketProvider) *Service {
	return &Service{
		provider: provider,
		log:      logging.New("PortfolioNewsService"),
		now:      time.Now,
	}
}

// ClientByName resolves a demo client record, case-insensitively.
func ClientByName(name string) (ClientPortfolio, bool) {
	c, ok := clientPortfolios[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Get assembles news, prices, and a summary. An unknown client falls back to
// the default demo portfolio; an unsupported timeframe falls back to 24h.
// Requests with neither tickers nor a client name fail fast.
func (s *Service) Get(ctx context.Context, tickers []string, timeframe, clientName string) (map[string]any, error) {
	var client *ClientPortfolio
	if clientName != "" {
		c, ok := ClientByName(clientName)
		if !ok {
			s.log.Warn("client not found, using default portfolio", "client_name", clientName)
			c, _ = ClientByName("default")
		}
		client = &c
		tickers = c.Tickers
		s.log.Info("resolved client portfolio", "client", c.Name, "tickers", len(tickers))
	}

	if len(tickers) == 0 {
		return nil, &agent.Error{
			Kind:    agent.KindMissingParameter,
			Message: "Tickers list is required and must be a non-empty array. Provide either 'tickers' parameter or a valid 'client_name'.",
		}
	}

	if !supportedTimeframe(timeframe) {
		s.log.Warn("unsupported timeframe, using default", "timeframe", timeframe)
		timeframe = "24h"
	}

	news := s.provider.PortfolioNews(ctx, tickers, timeframe)

	prices, err := s.provider.PortfolioPrices(ctx, tickers)
	if err != nil {
		s.log.Warn("price data unavailable", logging.Err(err))
		prices = []market.PriceQuote{}
	}

	result := map[string]any{
		"tickers":   tickers,
		"timeframe": timeframe,
		"news":      news,
		"prices":    prices,
		"summary":   summarize(news, prices),
	}
	if client != nil {
		result["client"] = *client
	}

	s.log.Info("portfolio data assembled", "articles", len(news), "quotes", len(prices))
	return result, nil
}

func summarize(news []market.Article, prices []market.PriceQuote) map[string]any {
	sources := map[string]int{}
	for _, a := range news {
		src := a.Source
		if src == "" {
			src = "Unknown"
		}
		sources[src]++
	}

	var changes []float64
	for _, p := range prices {
		if p.ChangePercent != nil {
			changes = append(changes, p.ChangePercent.InexactFloat64())
		}
	}
	avg, up, down := 0.0, 0, 0
	for _, c := range changes {
		avg += c
		if c > 0 {
			up++
		} else if c < 0 {
			down++
		}
	}
	if len(changes) > 0 {
		avg /= float64(len(changes))
	}

	return map[string]any{
		"total_news_articles": len(news),
		"news_sources":        sources,
		"total_tickers":       len(prices),
		"price_summary": map[string]any{
			"average_change_percent": round2(avg),
			"tickers_up":             up,
			"tickers_down":           down,
			"tickers_unchanged":      len(changes) - up - down,
		},
		"top_news_topics": topTopics(news),
	}
}

var stopwords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"is": true, "are": true, "was": true, "were": true, "a": true, "an": true,
}

// topTopics counts headline words longer than three letters, excluding
// stopwords, and returns the five most frequent.
func topTopics(news []market.Article) []string {
	counts := map[string]int{}
	for _, a := range news {
		for _, word := range strings.Fields(strings.ToLower(a.Title)) {
			word = strings.Trim(word, ".,!?:;()[]{}\"'-")
			if len(word) > 3 && !stopwords[word] && isAlpha(word) {
				counts[word]++
			}
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > 5 {
		words = words[:5]
	}
	return words
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func supportedTimeframe(tf string) bool {
	for _, s := range supportedTimeframes {
		if s == tf {
			return true
		}
	}
	return false
}

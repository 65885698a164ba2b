// Package market wraps the Alpaca market data API for the news, price, and
// historical-bar needs of the chatbot backend.
package market

import (
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"portfoliobot/pkg/cache"
	"portfoliobot/pkg/config"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/retry"
)

// Client holds the market data connection plus the news cache. Like every
// provider in this repository it is built once per execution environment and
// assumes one invocation at a time.
type Client struct {
	data      newsAndBars
	newsCache *cache.Store[[]Article]
	retry     retry.Policy
	log       *slog.Logger
	now       func() time.Time
}

// newsAndBars is the slice of the Alpaca market data client this package
// uses, extracted so tests can substitute a fake feed.
type newsAndBars interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
	GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error)
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

func New(cfg config.Config) *Client {
	md := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.AlpacaKey,
		APISecret: cfg.AlpacaSecret,
	})
	return &Client{
		data:      md,
		newsCache: cache.New[[]Article](cfg.NewsCacheTTL),
		retry:     retry.Policy{MaxAttempts: cfg.MaxRetries, Base: time.Second},
		log:       logging.New("MarketClient"),
		now:       time.Now,
	}
}

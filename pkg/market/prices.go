package market

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"portfoliobot/pkg/logging"
)

// PriceQuote is the current price for one ticker. When a single symbol fails
// inside a batch the Error field carries the reason and the rest of the batch
// still succeeds.
type PriceQuote struct {
	Ticker        string           `json:"ticker"`
	Price         *decimal.Decimal `json:"price"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
	Timestamp     string           `json:"timestamp"`
	Error         string           `json:"error,omitempty"`
}

// PortfolioPrices returns current prices and day changes for the tickers, in
// the order given. Symbols the feed has no snapshot for degrade per entry.
func (c *Client) PortfolioPrices(ctx context.Context, tickers []string) ([]PriceQuote, error) {
	symbols := normalizeTickers(tickers)
	if len(symbols) == 0 {
		return []PriceQuote{}, nil
	}

	var snapshots map[string]*marketdata.Snapshot
	err := c.retry.Do(ctx, func() error {
		var err error
		snapshots, err = c.data.GetSnapshots(symbols, marketdata.GetSnapshotRequest{
			Feed: marketdata.IEX,
		})
		if err != nil {
			c.log.Warn("snapshot request failed", logging.Err(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	now := c.now().UTC().Format(time.RFC3339)
	quotes := make([]PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		quotes = append(quotes, quoteFromSnapshot(symbol, snapshots[symbol], now))
	}
	return quotes, nil
}

func quoteFromSnapshot(symbol string, snap *marketdata.Snapshot, ts string) PriceQuote {
	q := PriceQuote{Ticker: symbol, Timestamp: ts}
	if snap == nil || snap.DailyBar == nil {
		q.Error = "no market data available"
		return q
	}

	price := decimal.NewFromFloat(snap.DailyBar.Close).Round(2)
	if snap.LatestTrade != nil && snap.LatestTrade.Price > 0 {
		price = decimal.NewFromFloat(snap.LatestTrade.Price).Round(2)
	}
	q.Price = &price

	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		prev := decimal.NewFromFloat(snap.PrevDailyBar.Close)
		change := price.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
		q.ChangePercent = &change
	}
	return q
}

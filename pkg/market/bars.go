package market

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// StockData is the daily-bar history for one ticker. SMA20 entries before the
// twentieth bar are zero since the window is not yet full.
type StockData struct {
	Close []float64
	High  []float64
	SMA20 []float64
	Dates []time.Time
}

// HistoricalBars retrieves daily bars for multiple tickers over [start, end]
// and computes the 20-day simple moving average for each.
func (c *Client) HistoricalBars(ctx context.Context, tickers []string, start, end time.Time) (map[string]StockData, error) {
	symbols := normalizeTickers(tickers)
	if len(symbols) == 0 {
		return map[string]StockData{}, nil
	}

	var bars map[string][]marketdata.Bar
	err := c.retry.Do(ctx, func() error {
		var err error
		bars, err = c.data.GetMultiBars(symbols, marketdata.GetBarsRequest{
			Start:     start,
			End:       end,
			TimeFrame: marketdata.OneDay,
			Feed:      marketdata.IEX,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error getting bars: %w", err)
	}

	result := make(map[string]StockData, len(bars))
	for ticker, tickerBars := range bars {
		close := make([]float64, len(tickerBars))
		high := make([]float64, len(tickerBars))
		dates := make([]time.Time, len(tickerBars))
		for i, bar := range tickerBars {
			close[i] = bar.Close
			high[i] = bar.High
			dates[i] = bar.Timestamp
		}
		result[ticker] = StockData{
			Close: close,
			High:  high,
			SMA20: sma(close, 20),
			Dates: dates,
		}
	}
	return result, nil
}

func sma(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := 0; j < window; j++ {
			sum += values[i-j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

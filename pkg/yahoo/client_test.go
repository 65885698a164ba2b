package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliobot/pkg/cache"
	"portfoliobot/pkg/config"
)

const summaryFixture = `{
	"quoteSummary": {
		"result": [{
			"price": {
				"symbol": "AAPL",
				"longName": "Apple Inc.",
				"regularMarketPrice": {"raw": 185.5},
				"marketCap": {"raw": 2900000000000}
			},
			"summaryDetail": {
				"forwardPE": {"raw": 24.1},
				"beta": {"raw": 1.25},
				"dividendYield": {"raw": 0.0055}
			},
			"financialData": {
				"returnOnEquity": {"raw": 1.47},
				"debtToEquity": {"raw": 176.3},
				"profitMargins": {"raw": 0.26},
				"earningsGrowth": {"raw": 0.11},
				"revenueGrowth": {"raw": 0.02},
				"ebitda": {"raw": 130000000000}
			},
			"defaultKeyStatistics": {
				"enterpriseValue": {"raw": 2950000000000}
			},
			"assetProfile": {
				"sector": "Technology",
				"industry": "Consumer Electronics"
			}
		}],
		"error": null
	}
}`

const emptyFixture = `{"quoteSummary": {"result": [{"price": {}}], "error": null}}`

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestClient(serverURL string) (*Client, *testClock) {
	clk := &testClock{t: time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)}
	c := New(config.Config{
		YahooBaseURL:   serverURL,
		QuoteCacheTTL:  30 * time.Minute,
		MaxRetries:     3,
		RequestTimeout: 5 * time.Second,
	})
	c.retry.Base = time.Millisecond
	c.cache = cache.NewWithClock[StockInfo](30*time.Minute, clk.now)
	c.now = clk.now
	return c, clk
}

func TestStockInfoParsesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	info, err := c.StockInfo(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "Apple Inc.", info.Name)
	assert.Equal(t, 185.5, *info.CurrentPrice)
	assert.Equal(t, 24.1, *info.ForwardPE)
	assert.Equal(t, 1.47, *info.ReturnOnEquity)
	assert.Equal(t, 176.3, *info.DebtToEquity)
	assert.Equal(t, 0.26, *info.ProfitMargins)
	assert.Equal(t, "Technology", info.Sector)
	assert.Equal(t, "2025-01-13T12:00:00Z", info.RetrievedAt)
}

func TestStockInfoCacheHit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	_, err := c.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	// Case variants share the normalized cache key.
	_, err = c.StockInfo(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestStockInfoTTLExpiryRefetches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c, clk := newTestClient(srv.URL)
	_, err := c.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	clk.advance(30 * time.Minute)
	_, err = c.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestStockInfoRetriesExhausted(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	_, err := c.StockInfo(context.Background(), "AAPL")
	require.Error(t, err)

	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "Unable to fetch data for AAPL")
	// Nothing stale or partial is cached after a failure.
	assert.Equal(t, 0, c.cache.Len())
}

func TestStockInfoRecoversWithinRetryBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	info, err := c.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "Apple Inc.", info.Name)
}

func TestValidateTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v10/finance/quoteSummary/AAPL" {
			w.Write([]byte(summaryFixture))
			return
		}
		w.Write([]byte(emptyFixture))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	assert.True(t, c.ValidateTicker(context.Background(), "AAPL"))
	assert.False(t, c.ValidateTicker(context.Background(), "ZZZZ"))
}

func TestValidateTickerDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	assert.False(t, c.ValidateTicker(context.Background(), "ZZZZ"))
	assert.Equal(t, 1, calls)
}

func TestClearCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	_, err := c.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 1, c.cache.Len())

	c.ClearCache()
	assert.Equal(t, 0, c.cache.Len())
}

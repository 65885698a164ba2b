package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliobot/pkg/cache"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/retry"
)

type fakeFeed struct {
	news      []marketdata.News
	newsErr   error
	newsCalls int

	snapshots map[string]*marketdata.Snapshot
	snapErr   error

	bars    map[string][]marketdata.Bar
	barsErr error
}

func (f *fakeFeed) GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error) {
	f.newsCalls++
	return f.news, f.newsErr
}

func (f *fakeFeed) GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error) {
	return f.snapshots, f.snapErr
}

func (f *fakeFeed) GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error) {
	return f.bars, f.barsErr
}

func newTestClient(feed *fakeFeed) *Client {
	p := retry.New(3)
	p.Base = time.Millisecond
	return &Client{
		data:      feed,
		newsCache: cache.New[[]Article](15 * time.Minute),
		retry:     p,
		log:       logging.New("MarketClientTest"),
		now:       func() time.Time { return time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC) },
	}
}

func newsItem(headline, source string, created time.Time, symbols ...string) marketdata.News {
	return marketdata.News{
		Headline:  headline,
		Source:    source,
		CreatedAt: created,
		Symbols:   symbols,
	}
}

func TestPortfolioNewsScoresAndSorts(t *testing.T) {
	base := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	feed := &fakeFeed{news: []marketdata.News{
		newsItem("Broad market rally continues", "Reuters", base, "SPY"),
		newsItem("Apple earnings beat expectations", "Benzinga", base.Add(-time.Hour), "AAPL"),
	}}
	c := newTestClient(feed)

	articles := c.PortfolioNews(context.Background(), []string{"AAPL"}, "24h")
	require.Len(t, articles, 2)
	// The held-ticker article outranks the unrelated one despite being older.
	assert.Equal(t, "Apple earnings beat expectations", articles[0].Title)
	assert.Equal(t, 0.8, articles[0].RelevanceScore)
	assert.Equal(t, 0.5, articles[1].RelevanceScore)
}

func TestPortfolioNewsDeduplicates(t *testing.T) {
	base := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	feed := &fakeFeed{news: []marketdata.News{
		newsItem("Apple announces record quarterly revenue and earnings beat", "Benzinga", base, "AAPL"),
		newsItem("APPLE ANNOUNCES RECORD QUARTERLY REVENUE AND EARNINGS miss", "Reuters", base, "AAPL"),
	}}
	c := newTestClient(feed)

	articles := c.PortfolioNews(context.Background(), []string{"AAPL"}, "24h")
	assert.Len(t, articles, 1)
}

func TestPortfolioNewsCapsAtTwenty(t *testing.T) {
	base := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	feed := &fakeFeed{}
	for i := 0; i < 30; i++ {
		feed.news = append(feed.news, newsItem(
			uniqueHeadline(i), "Benzinga", base.Add(-time.Duration(i)*time.Minute), "AAPL"))
	}
	c := newTestClient(feed)

	articles := c.PortfolioNews(context.Background(), []string{"AAPL"}, "24h")
	assert.Len(t, articles, maxArticles)
}

func uniqueHeadline(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	return "Headline " + string(letters[i%26]) + string(letters[(i/26)%26]) + " about something distinct"
}

func TestPortfolioNewsCachesByTickerSet(t *testing.T) {
	feed := &fakeFeed{news: []marketdata.News{
		newsItem("Apple update", "Benzinga", time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC), "AAPL"),
	}}
	c := newTestClient(feed)

	c.PortfolioNews(context.Background(), []string{"AAPL", "TSLA"}, "24h")
	// Order does not matter for the cache key.
	c.PortfolioNews(context.Background(), []string{"TSLA", "AAPL"}, "24h")
	assert.Equal(t, 1, feed.newsCalls)

	c.PortfolioNews(context.Background(), []string{"TSLA", "AAPL"}, "7d")
	assert.Equal(t, 2, feed.newsCalls)
}

func TestPortfolioNewsDegradesToEmptyList(t *testing.T) {
	feed := &fakeFeed{newsErr: errors.New("feed unavailable")}
	c := newTestClient(feed)

	articles := c.PortfolioNews(context.Background(), []string{"AAPL"}, "24h")
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
	assert.Equal(t, 3, feed.newsCalls)
}

func TestPortfolioPrices(t *testing.T) {
	feed := &fakeFeed{snapshots: map[string]*marketdata.Snapshot{
		"AAPL": {
			LatestTrade:  &marketdata.Trade{Price: 185.5},
			DailyBar:     &marketdata.Bar{Close: 185.0},
			PrevDailyBar: &marketdata.Bar{Close: 180.0},
		},
		"TSLA": nil,
	}}
	c := newTestClient(feed)

	quotes, err := c.PortfolioPrices(context.Background(), []string{"AAPL", "TSLA"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "AAPL", quotes[0].Ticker)
	assert.Equal(t, "185.5", quotes[0].Price.String())
	// (185.5 - 180) / 180 = 3.06%
	assert.Equal(t, "3.06", quotes[0].ChangePercent.String())
	assert.Empty(t, quotes[0].Error)

	assert.Equal(t, "TSLA", quotes[1].Ticker)
	assert.Nil(t, quotes[1].Price)
	assert.Equal(t, "no market data available", quotes[1].Error)
}

func TestHistoricalBarsComputesSMA(t *testing.T) {
	bars := make([]marketdata.Bar, 25)
	for i := range bars {
		bars[i] = marketdata.Bar{
			Close:     100,
			High:      101,
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		}
	}
	feed := &fakeFeed{bars: map[string][]marketdata.Bar{"AAPL": bars}}
	c := newTestClient(feed)

	data, err := c.HistoricalBars(context.Background(), []string{"AAPL"},
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	series := data["AAPL"]
	require.Len(t, series.SMA20, 25)
	assert.Equal(t, 0.0, series.SMA20[18])
	assert.Equal(t, 100.0, series.SMA20[19])
	assert.Equal(t, 100.0, series.SMA20[24])
}

func TestTimeframeDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"24h":     24 * time.Hour,
		"7d":      7 * 24 * time.Hour,
		"2w":      14 * 24 * time.Hour,
		"1m":      30 * 24 * time.Hour,
		"garbage": 24 * time.Hour,
		"":        24 * time.Hour,
		"0d":      24 * time.Hour,
	}
	for in, want := range cases {
		assert.Equal(t, want, timeframeDuration(in), "timeframe %q", in)
	}
}

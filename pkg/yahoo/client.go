// Package yahoo implements the quote data provider over the Yahoo Finance
// quoteSummary HTTP API, with a short-TTL in-memory cache and bounded retry.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfoliobot/pkg/cache"
	"portfoliobot/pkg/config"
	"portfoliobot/pkg/logging"
	"portfoliobot/pkg/retry"
)

// StockInfo is the extracted metric set for one ticker. Pointer fields are
// nil when the upstream did not report the metric; the analysis engine
// treats absent data as absent, not as zero.
type StockInfo struct {
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	CurrentPrice    *float64 `json:"currentPrice"`
	ForwardPE       *float64 `json:"forwardPE"`
	ReturnOnEquity  *float64 `json:"returnOnEquity"`
	DebtToEquity    *float64 `json:"debtToEquity"`
	ProfitMargins   *float64 `json:"profitMargins"`
	EarningsGrowth  *float64 `json:"earningsGrowth"`
	RevenueGrowth   *float64 `json:"revenueGrowth"`
	Sector          string   `json:"sector"`
	Industry        string   `json:"industry"`
	MarketCap       *float64 `json:"marketCap"`
	Beta            *float64 `json:"beta"`
	DividendYield   *float64 `json:"dividendYield"`
	EnterpriseValue *float64 `json:"enterpriseValue"`
	EBITDA          *float64 `json:"ebitda"`
	RetrievedAt     string   `json:"retrieved_at"`
}

// Client fetches and caches stock fundamentals. The cache is owned by this
// instance, keyed by the normalized (uppercased) ticker so case variants
// share one entry.
type Client struct {
	hc      *http.Client
	baseURL string
	retry   retry.Policy
	cache   *cache.Store[StockInfo]
	log     *slog.Logger
	now     func() time.Time
}

func New(cfg config.Config) *Client {
	return &Client{
		hc:      &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: strings.TrimRight(cfg.YahooBaseURL, "/"),
		retry:   retry.Policy{MaxAttempts: cfg.MaxRetries, Base: time.Second},
		cache:   cache.New[StockInfo](cfg.QuoteCacheTTL),
		log:     logging.New("YahooClient"),
		now:     time.Now,
	}
}

// StockInfo returns the fundamentals for a ticker, serving from cache while
// the entry is fresh. On a miss the fetch is retried with backoff; if every
// attempt fails the error propagates and nothing stale is substituted.
func (c *Client) StockInfo(ctx context.Context, ticker string) (StockInfo, error) {
	symbol := normalize(ticker)

	if info, ok := c.cache.Get(symbol); ok {
		c.log.Debug("using cached data", slog.String("ticker", symbol))
		return info, nil
	}

	var info StockInfo
	err := c.retry.Do(ctx, func() error {
		res, err := c.fetchSummary(ctx, symbol, "price,summaryDetail,financialData,defaultKeyStatistics,assetProfile")
		if err != nil {
			c.log.Warn("stock info request failed", slog.String("ticker", symbol), logging.Err(err))
			return err
		}
		info = stockInfoFrom(symbol, res, c.now())
		return nil
	})
	if err != nil {
		return StockInfo{}, fmt.Errorf("Unable to fetch data for %s: %w", symbol, err)
	}

	c.cache.Put(symbol, info)
	c.log.Info("retrieved stock info", slog.String("ticker", symbol))
	return info, nil
}

// ValidateTicker reports whether a symbol resolves to real data. It is used
// to reject obviously invalid tickers before expensive downstream calls and
// therefore returns false instead of erroring.
func (c *Client) ValidateTicker(ctx context.Context, ticker string) bool {
	symbol := normalize(ticker)
	if _, ok := c.cache.Get(symbol); ok {
		return true
	}
	res, err := c.fetchSummary(ctx, symbol, "price")
	if err != nil {
		c.log.Warn("ticker validation failed", slog.String("ticker", symbol), logging.Err(err))
		return false
	}
	return res.Price.Symbol != "" || res.Price.LongName != "" || res.Price.ShortName != ""
}

// ClearCache drops every cached entry.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.log.Info("cache cleared")
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

type yahooNum struct {
	Raw *float64 `json:"raw"`
}

type summaryResult struct {
	Price struct {
		Symbol             string   `json:"symbol"`
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		RegularMarketPrice yahooNum `json:"regularMarketPrice"`
		MarketCap          yahooNum `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		ForwardPE     yahooNum `json:"forwardPE"`
		Beta          yahooNum `json:"beta"`
		DividendYield yahooNum `json:"dividendYield"`
	} `json:"summaryDetail"`
	FinancialData struct {
		ReturnOnEquity yahooNum `json:"returnOnEquity"`
		DebtToEquity   yahooNum `json:"debtToEquity"`
		ProfitMargins  yahooNum `json:"profitMargins"`
		EarningsGrowth yahooNum `json:"earningsGrowth"`
		RevenueGrowth  yahooNum `json:"revenueGrowth"`
		Ebitda         yahooNum `json:"ebitda"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		EnterpriseValue yahooNum `json:"enterpriseValue"`
		ForwardPE       yahooNum `json:"forwardPE"`
	} `json:"defaultKeyStatistics"`
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	Earnings earningsModule `json:"earnings"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) fetchSummary(ctx context.Context, symbol, modules string) (summaryResult, error) {
	var zero summaryResult

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(modules))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("User-Agent", "portfoliobot/1.0")

	res, err := c.hc.Do(req)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return zero, fmt.Errorf("quote service: %s", res.Status)
	}

	var payload quoteSummaryResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return zero, fmt.Errorf("decoding quote response: %w", err)
	}
	if e := payload.QuoteSummary.Error; e != nil {
		return zero, fmt.Errorf("quote service: %s (%s)", e.Description, e.Code)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return zero, fmt.Errorf("no data returned for %s", symbol)
	}
	return payload.QuoteSummary.Result[0], nil
}

func stockInfoFrom(symbol string, res summaryResult, now time.Time) StockInfo {
	name := res.Price.LongName
	if name == "" {
		name = symbol
	}
	forwardPE := res.SummaryDetail.ForwardPE.Raw
	if forwardPE == nil {
		forwardPE = res.DefaultKeyStatistics.ForwardPE.Raw
	}
	return StockInfo{
		Symbol:          symbol,
		Name:            name,
		CurrentPrice:    res.Price.RegularMarketPrice.Raw,
		ForwardPE:       forwardPE,
		ReturnOnEquity:  res.FinancialData.ReturnOnEquity.Raw,
		DebtToEquity:    res.FinancialData.DebtToEquity.Raw,
		ProfitMargins:   res.FinancialData.ProfitMargins.Raw,
		EarningsGrowth:  res.FinancialData.EarningsGrowth.Raw,
		RevenueGrowth:   res.FinancialData.RevenueGrowth.Raw,
		Sector:          res.AssetProfile.Sector,
		Industry:        res.AssetProfile.Industry,
		MarketCap:       res.Price.MarketCap.Raw,
		Beta:            res.SummaryDetail.Beta.Raw,
		DividendYield:   res.SummaryDetail.DividendYield.Raw,
		EnterpriseValue: res.DefaultKeyStatistics.EnterpriseValue.Raw,
		EBITDA:          res.FinancialData.Ebitda.Raw,
		RetrievedAt:     now.UTC().Format(time.RFC3339),
	}
}
